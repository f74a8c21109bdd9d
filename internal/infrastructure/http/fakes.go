package httpserver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/domain"
)

var _ application.QuoteStore = (*fakeQuoteStore)(nil)
var _ application.ServiceResolver = (*fakeResolver)(nil)
var _ application.RatePricer = (*fakePricer)(nil)
var _ application.CountryDirectory = (*fakeCountries)(nil)

type fakeQuoteStore struct {
	rows map[application.QuoteKey]domain.Quote
	byID map[string]application.QuoteKey
	seq  int
}

func (f *fakeQuoteStore) Upsert(_ context.Context, key application.QuoteKey, fields application.QuoteFields) (domain.Quote, error) {
	if f.rows == nil {
		f.rows = map[application.QuoteKey]domain.Quote{}
		f.byID = map[string]application.QuoteKey{}
	}
	now := time.Now().UTC()
	q, ok := f.rows[key]
	if !ok {
		f.seq++
		q = domain.Quote{
			ID:          fmt.Sprintf("quote-%d", f.seq),
			BasketID:    key.BasketID,
			Fingerprint: key.Fingerprint,
			Service:     key.Service,
			Selected:    domain.Undetermined,
			CreatedAt:   now,
		}
		f.byID[q.ID] = key
	}
	q.Amount = fields.Amount
	q.Carrier = fields.Carrier
	q.Description = fields.Description
	q.Valid = fields.Valid
	q.ExpiresAt = fields.ExpiresAt
	q.UpdatedAt = now
	f.rows[key] = q
	return q, nil
}

func (f *fakeQuoteStore) Get(_ context.Context, quoteID string) (domain.Quote, error) {
	key, ok := f.byID[quoteID]
	if !ok {
		return domain.Quote{}, application.ErrNotFound
	}
	return f.rows[key], nil
}

func (f *fakeQuoteStore) ListByBasket(_ context.Context, basketID string) ([]domain.Quote, error) {
	var out []domain.Quote
	for _, q := range f.rows {
		if q.BasketID == basketID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out, nil
}

func (f *fakeQuoteStore) SelectExclusive(_ context.Context, basketID, fingerprint, quoteID string) (domain.Quote, error) {
	target, ok := f.byID[quoteID]
	if !ok || target.BasketID != basketID || target.Fingerprint != fingerprint {
		return domain.Quote{}, application.ErrNotFound
	}
	for key, q := range f.rows {
		if key.BasketID != basketID || key.Fingerprint != fingerprint {
			continue
		}
		if key == target {
			q.Selected = domain.Selected
		} else if q.Selected == domain.Selected {
			q.Selected = domain.NotSelected
		}
		f.rows[key] = q
	}
	return f.rows[target], nil
}

func (f *fakeQuoteStore) SelectedByGroup(_ context.Context, basketID, fingerprint string) (domain.Quote, error) {
	for _, q := range f.rows {
		if q.BasketID == basketID && q.Fingerprint == fingerprint && q.Selected == domain.Selected {
			return q, nil
		}
	}
	return domain.Quote{}, application.ErrNotFound
}

func (f *fakeQuoteStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for key, q := range f.rows {
		if q.Expired(now) {
			delete(f.rows, key)
			delete(f.byID, q.ID)
			n++
		}
	}
	return n, nil
}

type fakeResolver struct{ services map[string][]string }

func (f *fakeResolver) ApplicableServices(_ context.Context, countryCode string) ([]string, error) {
	return f.services[countryCode], nil
}

type fakePricer struct {
	rates map[string]domain.Rate
}

func (f *fakePricer) Price(_ context.Context, _, _, service string) (domain.Rate, error) {
	r, ok := f.rates[service]
	if !ok {
		return domain.Rate{}, domain.ErrRateNotFound
	}
	return r, nil
}

type fakeCountries struct{ countries []domain.Country }

func (f *fakeCountries) ListCountries(context.Context) ([]domain.Country, error) {
	return f.countries, nil
}

type fakeIdem struct{ seen map[string]bool }

func (f *fakeIdem) TryReserve(_ context.Context, key string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

// NewInMemoryService wires a QuoteService onto in-memory collaborators with
// two US services configured, one of them unpriceable.
func NewInMemoryService() (*application.QuoteService, *fakeQuoteStore, *fakeCountries) {
	store := &fakeQuoteStore{}
	resolver := &fakeResolver{services: map[string][]string{
		"US": {"standard", "express"},
		"GB": {"standard"},
	}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: decimal.RequireFromString("5.00"), Carrier: "UPS", Description: "3-5 days"},
	}}
	countries := &fakeCountries{countries: []domain.Country{
		{ISO: "US", Name: "United States", SortPriority: 10},
		{ISO: "GB", Name: "United Kingdom"},
	}}
	svc := application.NewQuoteService(store, resolver, pricer)
	return svc, store, countries
}
