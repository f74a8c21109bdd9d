package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/domain"
)

type Server struct {
	svc       *application.QuoteService
	countries application.CountryDirectory
	idem      application.IdempotencyStore
	ping      func(ctx context.Context) error
}

func NewServer(svc *application.QuoteService, countries application.CountryDirectory, idem application.IdempotencyStore) *Server {
	if idem == nil {
		idem = application.NoopIdempotency{}
	}
	return &Server{svc: svc, countries: countries, idem: idem}
}

// SetReadyCheck wires the readiness probe, typically a DB ping.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type destinationJSON struct {
	Name     string `json:"name"`
	Line1    string `json:"line_1"`
	Line2    string `json:"line_2"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

func (d destinationJSON) toDomain() domain.Destination {
	return domain.Destination{
		Name:     d.Name,
		Line1:    d.Line1,
		Line2:    d.Line2,
		City:     d.City,
		Postcode: d.Postcode,
		Country:  d.Country,
	}
}

type quoteJSON struct {
	ID          string     `json:"id"`
	BasketID    string     `json:"basket_id"`
	Fingerprint string     `json:"fingerprint"`
	Service     string     `json:"service"`
	Amount      string     `json:"amount"`
	Carrier     string     `json:"carrier"`
	Description string     `json:"description"`
	IsValid     bool       `json:"is_valid"`
	IsSelected  *bool      `json:"is_selected"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func toQuoteJSON(q domain.Quote) quoteJSON {
	return quoteJSON{
		ID:          q.ID,
		BasketID:    q.BasketID,
		Fingerprint: q.Fingerprint,
		Service:     q.Service,
		Amount:      q.Amount.StringFixed(2),
		Carrier:     q.Carrier,
		Description: q.Description,
		IsValid:     q.Valid,
		IsSelected:  q.Selected.Bool(),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		ExpiresAt:   q.ExpiresAt,
	}
}

func toQuoteList(quotes []domain.Quote) []quoteJSON {
	out := make([]quoteJSON, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteJSON(q))
	}
	return out
}

type reconcileRequest struct {
	BasketID    string          `json:"basket_id"`
	Tenant      string          `json:"tenant"`
	Destination destinationJSON `json:"destination"`
}

func (s *Server) CreateQuotes(w http.ResponseWriter, r *http.Request) {
	var body reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.BasketID == "" {
		writeError(w, http.StatusBadRequest, "basket_id is required")
		return
	}
	if key := r.Header.Get("X-Idempotency-Key"); key != "" {
		ok, err := s.idem.TryReserve(r.Context(), "quotes:"+key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "duplicate request")
			return
		}
	}

	quotes, err := s.svc.Reconcile(r.Context(), body.Destination.toDomain(), body.BasketID, body.Tenant)
	if err != nil {
		if errors.Is(err, application.ErrInvalidDestination) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	writeJSON(w, http.StatusOK, toQuoteList(quotes))
}

func (s *Server) ListQuotes(w http.ResponseWriter, r *http.Request) {
	basketID := r.URL.Query().Get("basket_id")
	if basketID == "" {
		writeError(w, http.StatusBadRequest, "basket_id is required")
		return
	}
	quotes, err := s.svc.Quotes(r.Context(), basketID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, toQuoteList(quotes))
}

type selectRequest struct {
	BasketID    string `json:"basket_id"`
	Fingerprint string `json:"fingerprint"`
}

func (s *Server) SelectQuote(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "id")
	var body selectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.BasketID == "" || body.Fingerprint == "" {
		writeError(w, http.StatusBadRequest, "basket_id and fingerprint are required")
		return
	}
	quote, err := s.svc.Select(r.Context(), body.BasketID, body.Fingerprint, quoteID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quote not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "select failed")
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(quote))
}

func (s *Server) QuoteBookable(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "id")
	country := r.URL.Query().Get("country")
	tenant := r.URL.Query().Get("tenant")
	basketID := r.URL.Query().Get("basket_id")
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}

	quote, err := s.svc.Get(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quote not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if basketID != "" && quote.BasketID != basketID {
		writeError(w, http.StatusNotFound, "quote not found")
		return
	}

	bookable := s.svc.CanBook(quote, domain.Destination{Country: country}, tenant)
	writeJSON(w, http.StatusOK, map[string]bool{"bookable": bookable})
}

func (s *Server) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.countries.ListCountries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	type countryJSON struct {
		ISO  string `json:"iso"`
		Name string `json:"name"`
	}
	out := make([]countryJSON, 0, len(countries))
	for _, c := range countries {
		out = append(out, countryJSON{ISO: c.ISO, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Code: status, Message: msg})
}
