package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Pricer misses. Recovered into sentinel invalid quotes during
	// reconciliation, never surfaced to the caller.
	ErrRateNotFound     = errors.New("shipping rate not found")
	ErrCountryNotServed = errors.New("country not served")
)
