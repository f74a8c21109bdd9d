package application

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint derives the stable identifier grouping quotes that belong to
// one quote request. It hashes a canonical JSON form of the destination
// country and tenant: sorted keys, fixed indentation, no timestamps or
// locale-dependent formatting. Identical inputs always yield identical
// output; the basket id is deliberately not part of the payload, so two
// baskets shipping to the same country under the same tenant share a
// fingerprint.
func Fingerprint(countryCode, tenant string) string {
	payload := map[string]any{
		"destination_country": countryCode,
		"tenant":              nil,
	}
	if tenant != "" {
		payload["tenant"] = tenant
	}
	// Map keys marshal in sorted order, which makes the byte form canonical.
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		// Two strings and a nil cannot fail to marshal.
		panic(err)
	}
	digest := sha1.Sum(data)
	return hex.EncodeToString(digest[:])
}
