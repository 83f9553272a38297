package quality

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxSentences bounds normalized prose values.
const MaxSentences = 3

// NormalizeText canonicalizes surviving prose: NFC form, collapsed
// whitespace, at most MaxSentences sentences, trailing punctuation.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	s = truncateSentences(s, MaxSentences)
	if !strings.ContainsRune(".!?", rune(s[len(s)-1])) {
		s += "."
	}
	return s
}

// NormalizeValue applies NormalizeText to string values and to string
// elements of list values; other types pass through unchanged.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return NormalizeText(val)
	case []string:
		out := make([]string, len(val))
		for i, e := range val {
			out[i] = strings.Join(strings.Fields(norm.NFC.String(e)), " ")
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			if s, ok := e.(string); ok {
				out[i] = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
			} else {
				out[i] = e
			}
		}
		return out
	default:
		return v
	}
}

// truncateSentences keeps the first n sentences. Sentence boundaries are
// terminal punctuation followed by a space; abbreviation handling is not
// attempted.
func truncateSentences(s string, n int) string {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '.' && s[i] != '!' && s[i] != '?' {
			continue
		}
		// Consume runs of terminal punctuation ("?!", "...").
		j := i
		for j+1 < len(s) && (s[j+1] == '.' || s[j+1] == '!' || s[j+1] == '?') {
			j++
		}
		if j+1 == len(s) {
			return s
		}
		if s[j+1] == ' ' {
			count++
			if count == n {
				return s[:j+1]
			}
		}
		i = j
	}
	return s
}
