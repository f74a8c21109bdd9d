package domain

import "github.com/shopspring/decimal"

// Rate is a configured shipping rate: the priced result for one carrier
// service. Reference data, owned by the store; the core only reads it.
type Rate struct {
	Name        string
	Amount      decimal.Decimal
	Carrier     string
	Description string
}

// Country is an ISO 3166-1 reference row. SortPriority pushes frequently
// used countries to the front of listings.
type Country struct {
	ISO          string
	Name         string
	NameOfficial string
	SortPriority int
}

// TenantConfig is the per-tenant configuration bag consumed by pricers.
type TenantConfig struct {
	Tenant   string
	Currency string
}
