package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// StatusError is returned for non-200 responses so callers can branch on the
// status code after retries are exhausted.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("status %d", e.Code) }

type Client struct {
	HTTP  *http.Client
	Token string
}

// DoJSON performs the request and decodes a JSON body into out, retrying
// transport failures and 5xx responses with exponential backoff. Non-5xx
// error statuses are permanent.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 3 * time.Second

	op := func() error {
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return &StatusError{Code: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&StatusError{Code: resp.StatusCode})
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(exp, ctx))
}
