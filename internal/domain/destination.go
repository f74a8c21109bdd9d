package domain

import "regexp"

// Destination is the shipping address a basket is quoted against. Only the
// country code participates in quoting; the rest is display data.
type Destination struct {
	Name     string
	Line1    string
	Line2    string
	City     string
	Postcode string
	Country  string
}

var countryRe = regexp.MustCompile(`^[A-Z]{2}$`)

// ValidCountry reports whether s looks like an ISO 3166-1 alpha-2 code.
func ValidCountry(s string) bool {
	return countryRe.MatchString(s)
}
