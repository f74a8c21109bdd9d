package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/domain"
)

// Ensure Fake implements application.RatePricer.
var _ application.RatePricer = (*Fake)(nil)

// Fake prices every service at a fixed amount; useful for dev and tests.
type Fake struct {
	amount  decimal.Decimal
	carrier string
}

func NewFake(amount decimal.Decimal, carrier string) *Fake {
	return &Fake{amount: amount, carrier: carrier}
}

func (f *Fake) Price(_ context.Context, _, _, service string) (domain.Rate, error) {
	return domain.Rate{
		Name:        service,
		Amount:      f.amount,
		Carrier:     f.carrier,
		Description: service,
	}, nil
}

// StaticConfigs resolves every tenant to the same configuration bag.
type StaticConfigs struct {
	Currency string
}

var _ application.ConfigResolver = StaticConfigs{}

func (s StaticConfigs) ForTenant(_ context.Context, tenant string) (domain.TenantConfig, error) {
	return domain.TenantConfig{Tenant: tenant, Currency: s.Currency}, nil
}
