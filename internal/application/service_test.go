package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shipquotes-service/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeQuoteStore, resolver *fakeResolver, pricer *fakePricer, opts ...Option) *QuoteService {
	opts = append([]Option{WithClock(fakeClock{t: testNow})}, opts...)
	return NewQuoteService(store, resolver, pricer, opts...)
}

func usDestination() domain.Destination {
	return domain.Destination{Name: "Jo Bloggs", Line1: "1 Main St", City: "Springfield", Postcode: "12345", Country: "US"}
}

func Test_Reconcile_TwoServices_OneFails(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard", "express"}}}
	pricer := &fakePricer{
		rates: map[string]domain.Rate{
			"standard": {Name: "standard", Amount: money("5.00"), Carrier: "UPS", Description: "3-5 days"},
		},
		errs: map[string]error{"express": domain.ErrRateNotFound},
	}
	svc := newTestService(store, resolver, pricer)

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Sorted service order: express before standard.
	invalid, valid := quotes[0], quotes[1]
	require.Equal(t, "express", invalid.Service)
	require.False(t, invalid.Valid)
	require.True(t, invalid.Amount.IsZero())
	require.Equal(t, domain.InvalidMarker, invalid.Carrier)
	require.Equal(t, domain.InvalidMarker, invalid.Description)

	require.Equal(t, "standard", valid.Service)
	require.True(t, valid.Valid)
	require.True(t, money("5.00").Equal(valid.Amount))
	require.Equal(t, "UPS", valid.Carrier)

	// Two results: nothing auto-selected.
	require.Equal(t, domain.Undetermined, invalid.Selected)
	require.Equal(t, domain.Undetermined, valid.Selected)
}

func Test_Reconcile_SingleService_AutoSelected(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: money("5.00"), Carrier: "UPS"},
	}}
	svc := newTestService(store, resolver, pricer)

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, domain.Selected, quotes[0].Selected)
}

func Test_Reconcile_NoServices_EmptyResult(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	svc := newTestService(store, &fakeResolver{services: map[string][]string{}}, &fakePricer{})

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	require.Empty(t, quotes)
	require.Empty(t, store.rows)
}

func Test_Reconcile_Idempotent_NoDuplicateRows(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard", "express"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: money("5.00"), Carrier: "UPS"},
		"express":  {Name: "express", Amount: money("15.00"), Carrier: "UPS"},
	}}
	svc := newTestService(store, resolver, pricer)

	first, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	second, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)

	// Row count equals the number of distinct services, not reconcile calls.
	require.Len(t, store.rows, 2)
	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].ID, second[i].ID)
		require.Equal(t, first[i].Service, second[i].Service)
		require.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func Test_Reconcile_DifferentBaskets_ShareFingerprint(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: money("5.00"), Carrier: "UPS"},
	}}
	svc := newTestService(store, resolver, pricer)

	q1, err := svc.Reconcile(context.Background(), usDestination(), "b1", "t1")
	require.NoError(t, err)
	q2, err := svc.Reconcile(context.Background(), usDestination(), "b2", "t1")
	require.NoError(t, err)

	require.Equal(t, q1[0].Fingerprint, q2[0].Fingerprint)
	require.NotEqual(t, q1[0].ID, q2[0].ID)
}

func Test_Reconcile_InvalidDestination(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeQuoteStore(testNow), &fakeResolver{}, &fakePricer{})

	for _, country := range []string{"", "usa", "U"} {
		_, err := svc.Reconcile(context.Background(), domain.Destination{Country: country}, "b1", "")
		require.ErrorIs(t, err, ErrInvalidDestination)
	}
}

func Test_Reconcile_StoreFailurePropagates(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	store.err = errors.New("pg down")
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{"standard": {Name: "standard", Amount: money("5.00")}}}
	svc := newTestService(store, resolver, pricer)

	_, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.ErrorContains(t, err, "pg down")
}

func Test_Reconcile_UnknownPricerErrorPropagates(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard"}}}
	pricer := &fakePricer{errs: map[string]error{"standard": errors.New("rate api timeout")}}
	svc := newTestService(store, resolver, pricer)

	_, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.ErrorContains(t, err, "rate api timeout")
	require.Empty(t, store.rows)
}

func Test_Reconcile_SetsExpiryWindow(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard", "express"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: money("5.00")},
		"express":  {Name: "express", Amount: money("15.00")},
	}}
	svc := newTestService(store, resolver, pricer, WithQuoteTTL(48*time.Hour))

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	for _, q := range quotes {
		require.NotNil(t, q.ExpiresAt)
		require.Equal(t, testNow.Add(48*time.Hour), *q.ExpiresAt)
	}
}

func Test_Reconcile_ZeroTTL_NeverExpires(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{"standard": {Name: "standard", Amount: money("5.00")}}}
	svc := newTestService(store, resolver, pricer, WithQuoteTTL(0))

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	require.Nil(t, quotes[0].ExpiresAt)
}

func Test_Select_Exclusivity(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard", "express"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: money("5.00")},
		"express":  {Name: "express", Amount: money("15.00")},
	}}
	svc := newTestService(store, resolver, pricer)

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)
	a, b := quotes[0], quotes[1]
	fp := a.Fingerprint

	got, err := svc.Select(context.Background(), "b1", fp, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Selected, got.Selected)

	got, err = svc.Select(context.Background(), "b1", fp, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Selected, got.Selected)

	prev, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.NotSelected, prev.Selected)

	sel, err := svc.SelectedQuote(context.Background(), "b1", fp)
	require.NoError(t, err)
	require.Equal(t, b.ID, sel.ID)
}

func Test_Select_WrongGroup_NotFound(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{"standard": {Name: "standard", Amount: money("5.00")}}}
	svc := newTestService(store, resolver, pricer)

	quotes, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)

	_, err = svc.Select(context.Background(), "b1", quotes[0].Fingerprint, "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Select(context.Background(), "other-basket", quotes[0].Fingerprint, quotes[0].ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_CanBook(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeQuoteStore(testNow), &fakeResolver{}, &fakePricer{})
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Hour)
	fp := Fingerprint("US", "t1")

	base := domain.Quote{Fingerprint: fp, Valid: true, ExpiresAt: &future}
	dest := domain.Destination{Country: "US"}

	require.True(t, svc.CanBook(base, dest, "t1"))

	expired := base
	expired.ExpiresAt = &past
	require.False(t, svc.CanBook(expired, dest, "t1"))

	invalid := base
	invalid.Valid = false
	require.False(t, svc.CanBook(invalid, dest, "t1"))

	// Address changed after quoting: fingerprint recompute must reject.
	require.False(t, svc.CanBook(base, domain.Destination{Country: "GB"}, "t1"))
	require.False(t, svc.CanBook(base, dest, "t2"))

	never := base
	never.ExpiresAt = nil
	require.True(t, svc.CanBook(never, dest, "t1"))
}

func Test_PurgeExpired(t *testing.T) {
	t.Parallel()
	store := newFakeQuoteStore(testNow)
	resolver := &fakeResolver{services: map[string][]string{"US": {"standard", "express"}}}
	pricer := &fakePricer{rates: map[string]domain.Rate{
		"standard": {Name: "standard", Amount: money("5.00")},
		"express":  {Name: "express", Amount: money("15.00")},
	}}
	svc := newTestService(store, resolver, pricer, WithQuoteTTL(time.Hour))

	_, err := svc.Reconcile(context.Background(), usDestination(), "b1", "")
	require.NoError(t, err)

	n, err := svc.PurgeExpired(context.Background(), testNow.Add(30*time.Minute))
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, store.rows, 2)

	n, err = svc.PurgeExpired(context.Background(), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Empty(t, store.rows)
}
