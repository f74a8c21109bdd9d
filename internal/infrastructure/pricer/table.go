package pricer

import (
	"context"
	"fmt"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/domain"
)

// RateSource is the reference-data lookup the table pricer prices from.
type RateSource interface {
	RateFor(ctx context.Context, countryCode, service string) (domain.Rate, error)
}

// Table prices services from the configured shipping-rate table. Misses come
// back as domain.ErrRateNotFound / domain.ErrCountryNotServed so the
// reconciler can record them as invalid quotes.
type Table struct {
	Rates   RateSource
	Configs application.ConfigResolver
}

var _ application.RatePricer = (*Table)(nil)

func (t *Table) Price(ctx context.Context, tenant, countryCode, service string) (domain.Rate, error) {
	if t.Configs != nil {
		// Tenant config gates pricing even though table rates are global;
		// an unresolvable tenant is an infrastructure failure, not a miss.
		if _, err := t.Configs.ForTenant(ctx, tenant); err != nil {
			return domain.Rate{}, fmt.Errorf("resolve tenant config: %w", err)
		}
	}
	return t.Rates.RateFor(ctx, countryCode, service)
}
