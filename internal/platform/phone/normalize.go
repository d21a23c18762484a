// Package phone canonicalises phone identifiers. It contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when the caller has no configured region.
const DefaultRegion = "IL"

// Normalizer formats numbers to E.164 relative to a default region.
type Normalizer struct {
	region string
}

func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Normalize formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func (n *Normalizer) Normalize(input string) string {
	return NormalizeE164(input, n.region)
}

// NormalizeE164 formats input to E.164 using region for numbers without a country code.
// Unparseable or invalid numbers are returned trimmed, so lookups stay exact-match.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
