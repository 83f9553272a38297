package quality

import (
	"regexp"
	"strings"
)

// genericFamily pairs a reject pattern with the reason reported to operators.
type genericFamily struct {
	re     *regexp.Regexp
	reason string
}

// The four curated families of non-content text. Order matters only for
// which reason gets reported when families overlap.
var genericFamilies = []genericFamily{
	{
		// Meta-commentary about the quality of the content instead of content.
		re: regexp.MustCompile(`(?i)\b(could be (sharper|stronger|clearer|more specific)|` +
			`has gaps? in|needs? (more|further|additional) (work|detail|research|refinement)|` +
			`is (too )?(vague|generic|unclear|broad)|lacks (detail|specificity|clarity|focus))`),
		reason: "evaluative commentary, not content",
	},
	{
		// Templated generic openers.
		re: regexp.MustCompile(`(?i)^\s*(the (company|business|firm|brand) (offers|provides|delivers|is a)|` +
			`we (offer|provide|deliver) (a |an |the )?(wide |full |broad |comprehensive )?(range|variety|suite|selection) of|` +
			`a leading (provider|supplier|company) of)`),
		reason: "templated generic opener",
	},
	{
		// Placeholder hedges from language models.
		re: regexp.MustCompile(`(?i)(unable to (determine|find|extract|identify)|` +
			`could not (be )?(determine[d]?|find|found|identif(y|ied))|` +
			`no (specific |further )?(information|data|details?) (was |were |is )?(available|found|provided)|` +
			`it is unclear|insufficient (information|data|context)|as an ai)`),
		reason: "placeholder hedge",
	},
}

// buzzwords that, on their own, say nothing about a business.
var buzzwords = map[string]struct{}{
	"innovation": {}, "innovative": {}, "excellence": {}, "quality": {},
	"synergy": {}, "passion": {}, "passionate": {}, "commitment": {},
	"committed": {}, "integrity": {}, "trust": {}, "trusted": {},
	"dedicated": {}, "dedication": {}, "customer-centric": {},
	"customer-centricity": {}, "cutting-edge": {}, "world-class": {},
	"best-in-class": {}, "results-driven": {}, "value": {}, "values": {},
	"solutions": {}, "success": {}, "growth": {}, "leadership": {},
}

// connector words ignored when judging buzzword-only phrases.
var connectors = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "of": {}, "to": {}, "for": {},
	"with": {}, "a": {}, "an": {}, "in": {}, "our": {}, "your": {},
	"through": {}, "by": {}, "via": {}, "&": {},
}

// IsGeneric classifies text that passes the meaningfulness gate but still
// carries no usable information. It returns the reject reason, or "" when
// the text is acceptable.
func IsGeneric(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	for _, fam := range genericFamilies {
		if fam.re.MatchString(trimmed) {
			return fam.reason
		}
	}
	if buzzwordOnly(trimmed) {
		return "buzzword-only phrase"
	}
	return ""
}

// buzzwordOnly reports whether every content word in a short phrase is a
// stock buzzword ("Innovation and Customer-Centricity").
func buzzwordOnly(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	content := 0
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()")
		if w == "" {
			continue
		}
		if _, skip := connectors[w]; skip {
			continue
		}
		if _, buzz := buzzwords[w]; !buzz {
			return false
		}
		content++
	}
	return content > 0
}
