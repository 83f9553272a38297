package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMeaningful_Strings(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"real text", "B2B SaaS companies in fintech", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"too short", "ab", false},
		{"exactly min length", "abc", true},
		{"placeholder n/a", "n/a", false},
		{"placeholder N/A upper", "N/A", false},
		{"placeholder tbd", "TBD", false},
		{"placeholder unknown", "unknown", false},
		{"placeholder empty marker", "(empty)", false},
		{"placeholder not found", "Not Found", false},
		{"padded placeholder", "  tbd  ", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsMeaningful(tc.value))
		})
	}
}

func TestIsMeaningful_NonStrings(t *testing.T) {
	assert.False(t, IsMeaningful(nil))
	assert.True(t, IsMeaningful(42))
	assert.True(t, IsMeaningful(3.14))
	assert.True(t, IsMeaningful(true))

	assert.False(t, IsMeaningful([]any{}))
	assert.False(t, IsMeaningful([]any{"", "n/a"}))
	assert.True(t, IsMeaningful([]any{"", "organic search"}))

	assert.False(t, IsMeaningful([]string{}))
	assert.True(t, IsMeaningful([]string{"paid social"}))

	assert.False(t, IsMeaningful(map[string]any{}))
	assert.False(t, IsMeaningful(map[string]any{"note": "tbd"}))
	assert.True(t, IsMeaningful(map[string]any{"note": "launch in Q3"}))
}

// A value that survives the write path must remain meaningful when read back.
func TestIsMeaningful_RoundTrip(t *testing.T) {
	inputs := []string{
		"B2B SaaS companies with 50-500 employees in fintech",
		"Premium positioning against discount competitors",
		"Owner-operated HVAC contractors in the Southeast",
	}
	for _, in := range inputs {
		normalized := NormalizeText(in)
		assert.True(t, IsMeaningful(normalized), "normalized %q", in)
		assert.Empty(t, IsGeneric(normalized))
	}
}
