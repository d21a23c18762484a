package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{"local israeli mobile", "052-123-4567", "IL", "+972521234567"},
		{"already e164", "+972521234567", "IL", "+972521234567"},
		{"whitespace trimmed", "  +972521234567 ", "IL", "+972521234567"},
		{"empty", "   ", "IL", ""},
		{"garbage kept as is", "not-a-number", "IL", "not-a-number"},
		{"invalid kept trimmed", " +111 ", "IL", "+111"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeE164(tc.input, tc.region))
		})
	}
}

func TestNormalizer_DefaultsRegion(t *testing.T) {
	n := NewNormalizer("")
	assert.Equal(t, "+972521234567", n.Normalize("0521234567"))
}
