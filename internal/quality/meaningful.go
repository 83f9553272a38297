// Package quality implements the content-quality gate: meaningfulness,
// generic-text detection, field-type specificity checks, and text
// normalization. Every function here is pure and sees only the candidate
// value, never the graph.
package quality

import (
	"math"
	"strings"
)

// MinMeaningfulLength is the minimum trimmed length for a string value.
const MinMeaningfulLength = 3

// placeholderTokens are values producers emit when they found nothing.
var placeholderTokens = map[string]struct{}{
	"n/a":       {},
	"na":        {},
	"none":      {},
	"null":      {},
	"nil":       {},
	"tbd":       {},
	"todo":      {},
	"unknown":   {},
	"undefined": {},
	"(empty)":   {},
	"-":         {},
	"--":        {},
	"pending":   {},
	"not found": {},
}

// IsMeaningful reports whether a candidate value carries actual content.
// Nil values, short or placeholder strings, empty lists, and empty or
// placeholder-only objects all fail.
func IsMeaningful(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return meaningfulString(val)
	case []string:
		for _, e := range val {
			if meaningfulString(e) {
				return true
			}
		}
		return false
	case []any:
		for _, e := range val {
			if IsMeaningful(e) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, e := range val {
			if IsMeaningful(e) {
				return true
			}
		}
		return false
	case float64:
		return !math.IsNaN(val)
	case float32:
		return !math.IsNaN(float64(val))
	default:
		// Ints, bools, and other scalars count as content.
		return true
	}
}

func meaningfulString(s string) bool {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < MinMeaningfulLength {
		return false
	}
	_, placeholder := placeholderTokens[strings.ToLower(trimmed)]
	return !placeholder
}
