package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"shipquotes-service/internal/domain"
)

// QuoteKey is the dedup key for a quote row.
type QuoteKey struct {
	BasketID    string
	Fingerprint string
	Service     string
}

// QuoteFields is the mutable part of a quote row, overwritten on every
// reconciliation pass for the same key.
type QuoteFields struct {
	Amount      decimal.Decimal
	Carrier     string
	Description string
	Valid       bool
	ExpiresAt   *time.Time
}

// QuoteStore is the durable quote storage. Upsert must be atomic per key:
// insert-or-update under the (basket_id, fingerprint, service) uniqueness
// constraint, never a read-then-write. SelectExclusive must clear the old
// selection and set the new one in a single transaction.
type QuoteStore interface {
	Upsert(ctx context.Context, key QuoteKey, fields QuoteFields) (domain.Quote, error)
	Get(ctx context.Context, quoteID string) (domain.Quote, error)
	ListByBasket(ctx context.Context, basketID string) ([]domain.Quote, error)
	SelectExclusive(ctx context.Context, basketID, fingerprint, quoteID string) (domain.Quote, error)
	SelectedByGroup(ctx context.Context, basketID, fingerprint string) (domain.Quote, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ServiceResolver yields the carrier service names configured for a
// destination country. An empty result is not an error.
type ServiceResolver interface {
	ApplicableServices(ctx context.Context, countryCode string) ([]string, error)
}

// RatePricer prices one service for a destination. A missing rate surfaces
// as domain.ErrRateNotFound, an unserved country as domain.ErrCountryNotServed;
// anything else is an infrastructure failure.
type RatePricer interface {
	Price(ctx context.Context, tenant, countryCode, service string) (domain.Rate, error)
}

// ConfigResolver resolves the per-tenant configuration bag consumed by
// pricers. The reconciler itself never inspects it.
type ConfigResolver interface {
	ForTenant(ctx context.Context, tenant string) (domain.TenantConfig, error)
}

// CountryDirectory lists shippable countries for address forms.
type CountryDirectory interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
}
