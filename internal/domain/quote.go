package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvalidMarker is written into carrier/description when pricing a service
// fails. The quote is kept as data so callers can see per-service failures.
const InvalidMarker = "INVALID"

// Quote is a cached shipping quote for one carrier service.
// (BasketID, Fingerprint, Service) is the natural dedup key: re-quoting an
// unchanged destination updates the row in place.
type Quote struct {
	ID          string
	BasketID    string
	Fingerprint string
	Service     string
	Amount      decimal.Decimal
	Carrier     string
	Description string
	Valid       bool
	Selected    Selection
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   *time.Time
}

// Expired reports whether the quote can no longer be booked because its
// expiry has passed. A nil ExpiresAt never expires.
func (q Quote) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && !now.Before(*q.ExpiresAt)
}

// InvalidQuoteFields returns the sentinel pricing result recorded when a
// service cannot be priced for a destination.
func InvalidQuoteFields() (decimal.Decimal, string, string) {
	return decimal.Zero, InvalidMarker, InvalidMarker
}
