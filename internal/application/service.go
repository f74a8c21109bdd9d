package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shipquotes-service/internal/domain"
)

// DefaultQuoteTTL is how long a quote stays bookable after its last upsert.
const DefaultQuoteTTL = 30 * 24 * time.Hour

// QuoteService reconciles shipping quotes for a basket against the
// configured rates and owns the selection and expiry rules. It is stateless;
// all shared mutable state lives behind QuoteStore, which is responsible for
// upsert and selection atomicity.
type QuoteService struct {
	store    QuoteStore
	resolver ServiceResolver
	pricer   RatePricer
	clock    Clock
	quoteTTL time.Duration
}

type Option func(*QuoteService)

func WithClock(c Clock) Option { return func(s *QuoteService) { s.clock = c } }

// WithQuoteTTL overrides the expiry window. A non-positive ttl makes quotes
// never expire.
func WithQuoteTTL(ttl time.Duration) Option {
	return func(s *QuoteService) { s.quoteTTL = ttl }
}

func NewQuoteService(store QuoteStore, resolver ServiceResolver, pricer RatePricer, opts ...Option) *QuoteService {
	s := &QuoteService{
		store:    store,
		resolver: resolver,
		pricer:   pricer,
		quoteTTL: DefaultQuoteTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	return s
}

// Reconcile prices every service applicable to the destination and upserts
// one quote per service under (basket, fingerprint, service). A pricer miss
// for one service is recorded as an invalid sentinel quote and never aborts
// the pass; store failures do. When exactly one quote results, it is
// auto-selected. Quotes are returned in service-name order.
func (s *QuoteService) Reconcile(ctx context.Context, dest domain.Destination, basketID, tenant string) ([]domain.Quote, error) {
	if !domain.ValidCountry(dest.Country) {
		return nil, ErrInvalidDestination
	}
	fingerprint := Fingerprint(dest.Country, tenant)

	services, err := s.resolver.ApplicableServices(ctx, dest.Country)
	if err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	sort.Strings(services)

	expiresAt := s.expiry()
	quotes := make([]domain.Quote, 0, len(services))
	for _, name := range services {
		fields := QuoteFields{ExpiresAt: expiresAt}
		rate, err := s.pricer.Price(ctx, tenant, dest.Country, name)
		switch {
		case err == nil:
			fields.Amount = rate.Amount
			fields.Carrier = rate.Carrier
			fields.Description = rate.Description
			fields.Valid = true
		case errors.Is(err, domain.ErrRateNotFound), errors.Is(err, domain.ErrCountryNotServed):
			fields.Amount, fields.Carrier, fields.Description = domain.InvalidQuoteFields()
			fields.Valid = false
		default:
			return nil, fmt.Errorf("price service %q: %w", name, err)
		}

		q, err := s.store.Upsert(ctx, QuoteKey{BasketID: basketID, Fingerprint: fingerprint, Service: name}, fields)
		if err != nil {
			return nil, fmt.Errorf("upsert quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	// A single result is unambiguous; anything else leaves prior explicit
	// selections alone.
	if len(quotes) == 1 {
		selected, err := s.store.SelectExclusive(ctx, basketID, fingerprint, quotes[0].ID)
		if err != nil {
			return nil, fmt.Errorf("auto-select quote: %w", err)
		}
		quotes[0] = selected
	}
	return quotes, nil
}

// Select marks the given quote as the basket's chosen one within its
// fingerprint group, clearing any previously selected quote in the group.
// Returns ErrNotFound when the id is not part of (basketID, fingerprint).
func (s *QuoteService) Select(ctx context.Context, basketID, fingerprint, quoteID string) (domain.Quote, error) {
	return s.store.SelectExclusive(ctx, basketID, fingerprint, quoteID)
}

// SelectedQuote returns the currently selected quote of a fingerprint group.
func (s *QuoteService) SelectedQuote(ctx context.Context, basketID, fingerprint string) (domain.Quote, error) {
	return s.store.SelectedByGroup(ctx, basketID, fingerprint)
}

// Quotes lists all cached quotes for a basket, across fingerprints.
func (s *QuoteService) Quotes(ctx context.Context, basketID string) ([]domain.Quote, error) {
	return s.store.ListByBasket(ctx, basketID)
}

// Get fetches a single quote by id.
func (s *QuoteService) Get(ctx context.Context, quoteID string) (domain.Quote, error) {
	return s.store.Get(ctx, quoteID)
}

// CanBook reports whether the quote may still be booked for the given
// destination and tenant: it must be valid, unexpired, and its fingerprint
// must match one recomputed from the current destination. The recompute
// guards against quotes surviving an address change.
func (s *QuoteService) CanBook(q domain.Quote, dest domain.Destination, tenant string) bool {
	if !q.Valid || q.Expired(s.clock.Now()) {
		return false
	}
	return q.Fingerprint == Fingerprint(dest.Country, tenant)
}

// PurgeExpired removes all quotes whose expiry is at or before now and
// returns how many were removed. An upsert in the same pass refreshes
// expires_at, so freshly reconciled quotes are never purged.
func (s *QuoteService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteExpired(ctx, now)
}

func (s *QuoteService) expiry() *time.Time {
	if s.quoteTTL <= 0 {
		return nil
	}
	t := s.clock.Now().Add(s.quoteTTL)
	return &t
}
