package pricer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/domain"
	"shipquotes-service/internal/infrastructure/httpx"
)

const remoteRatesPath = "/v1/rates"

// Remote prices services against an external rate API. A 404 maps to
// domain.ErrRateNotFound so remote misses degrade into invalid quotes the
// same way table misses do.
type Remote struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
	Configs application.ConfigResolver
}

var _ application.RatePricer = (*Remote)(nil)

type remoteRateResp struct {
	Service     string `json:"service"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Carrier     string `json:"carrier"`
	Description string `json:"description"`
}

func (p *Remote) Price(ctx context.Context, tenant, countryCode, service string) (domain.Rate, error) {
	if p.BaseURL == "" {
		return domain.Rate{}, errors.New("remote pricer: missing configuration")
	}

	currency := ""
	if p.Configs != nil {
		cfg, err := p.Configs.ForTenant(ctx, tenant)
		if err != nil {
			return domain.Rate{}, fmt.Errorf("remote pricer: resolve tenant config: %w", err)
		}
		currency = cfg.Currency
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("remote pricer: invalid base url: %w", err)
	}
	u.Path = remoteRatesPath
	q := u.Query()
	q.Set("country", countryCode)
	q.Set("service", service)
	if currency != "" {
		q.Set("currency", currency)
	}
	if tenant != "" {
		q.Set("tenant", tenant)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("remote pricer: create request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{Token: p.APIKey}
	}
	var body remoteRateResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return domain.Rate{}, domain.ErrRateNotFound
		}
		return domain.Rate{}, fmt.Errorf("remote pricer: %w", err)
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("remote pricer: bad amount %q: %w", body.Amount, err)
	}
	return domain.Rate{
		Name:        service,
		Amount:      amount,
		Carrier:     body.Carrier,
		Description: body.Description,
	}, nil
}
