package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"shipquotes-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeQuoteStore struct {
	rows map[QuoteKey]domain.Quote
	byID map[string]QuoteKey
	now  time.Time
	seq  int
	err  error
}

func newFakeQuoteStore(now time.Time) *fakeQuoteStore {
	return &fakeQuoteStore{
		rows: map[QuoteKey]domain.Quote{},
		byID: map[string]QuoteKey{},
		now:  now,
	}
}

func (f *fakeQuoteStore) Upsert(_ context.Context, key QuoteKey, fields QuoteFields) (domain.Quote, error) {
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	q, ok := f.rows[key]
	if !ok {
		f.seq++
		q = domain.Quote{
			ID:          fmt.Sprintf("quote-%d", f.seq),
			BasketID:    key.BasketID,
			Fingerprint: key.Fingerprint,
			Service:     key.Service,
			Selected:    domain.Undetermined,
			CreatedAt:   f.now,
		}
		f.byID[q.ID] = key
	}
	q.Amount = fields.Amount
	q.Carrier = fields.Carrier
	q.Description = fields.Description
	q.Valid = fields.Valid
	q.ExpiresAt = fields.ExpiresAt
	q.UpdatedAt = f.now
	f.rows[key] = q
	return q, nil
}

func (f *fakeQuoteStore) Get(_ context.Context, quoteID string) (domain.Quote, error) {
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	key, ok := f.byID[quoteID]
	if !ok {
		return domain.Quote{}, ErrNotFound
	}
	return f.rows[key], nil
}

func (f *fakeQuoteStore) ListByBasket(_ context.Context, basketID string) ([]domain.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
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
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	target, ok := f.byID[quoteID]
	if !ok || target.BasketID != basketID || target.Fingerprint != fingerprint {
		return domain.Quote{}, ErrNotFound
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
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	for _, q := range f.rows {
		if q.BasketID == basketID && q.Fingerprint == fingerprint && q.Selected == domain.Selected {
			return q, nil
		}
	}
	return domain.Quote{}, ErrNotFound
}

func (f *fakeQuoteStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
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

type fakeResolver struct {
	services map[string][]string
	err      error
}

func (f *fakeResolver) ApplicableServices(_ context.Context, countryCode string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.services[countryCode], nil
}

type fakePricer struct {
	rates map[string]domain.Rate
	errs  map[string]error
}

func (f *fakePricer) Price(_ context.Context, _, _, service string) (domain.Rate, error) {
	if err, ok := f.errs[service]; ok {
		return domain.Rate{}, err
	}
	r, ok := f.rates[service]
	if !ok {
		return domain.Rate{}, domain.ErrRateNotFound
	}
	return r, nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
