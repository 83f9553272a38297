package quality

import (
	"regexp"
	"strings"
)

// Check names a field-type-specific specificity validation.
type Check string

const (
	// CheckNone applies no specificity validation.
	CheckNone Check = ""
	// CheckAudience validates ideal-customer-profile text.
	CheckAudience Check = "audience"
	// CheckPositioning validates positioning statements.
	CheckPositioning Check = "positioning"
)

var (
	numericMarker = regexp.MustCompile(`\d`)

	industryMarkers = []string{
		"saas", "software", "fintech", "healthcare", "health care", "medtech",
		"e-commerce", "ecommerce", "retail", "manufacturing", "logistics",
		"construction", "real estate", "hospitality", "restaurant", "legal",
		"law firm", "accounting", "insurance", "education", "nonprofit",
		"non-profit", "agency", "b2b", "b2c", "dtc", "consumer", "industrial",
		"automotive", "biotech", "agriculture", "energy",
	}

	roleMarkers = []string{
		"founder", "owner", "ceo", "cto", "cmo", "cfo", "coo", "vp ",
		"vice president", "director", "manager", "head of", "executive",
		"marketer", "engineer", "developer", "practitioner", "operator",
		"decision maker", "decision-maker",
	}

	stageMarkers = []string{
		"startup", "start-up", "scale-up", "scaleup", "smb", "small business",
		"small businesses", "mid-market", "midmarket", "enterprise", "seed",
		"series a", "series b", "series c", "growth-stage", "growth stage",
		"early-stage", "early stage", "local business", "local businesses",
		"family-owned", "bootstrapped", "venture-backed",
	}

	genericPositioning = regexp.MustCompile(`(?i)(solutions? provider|` +
		`focused on innovation|customer needs|trusted partner|` +
		`one[- ]stop[- ]shop|full[- ]service (agency|provider|firm)|` +
		`all your .* needs|provider of choice)`)
)

// ValidateAudience checks that ICP/audience text names something concrete: a
// numeric marker, an industry, a role, or a company stage. In baseline mode
// (consumer/local-business extraction) only a minimal word count is required.
// Returns the reject reason, or "" when the text passes.
func ValidateAudience(text string, baseline bool) string {
	trimmed := strings.TrimSpace(text)
	if baseline {
		if len(strings.Fields(trimmed)) < 3 {
			return "audience text too thin even for baseline mode"
		}
		return ""
	}
	lower := strings.ToLower(trimmed)
	if numericMarker.MatchString(lower) {
		return ""
	}
	for _, set := range [][]string{industryMarkers, roleMarkers, stageMarkers} {
		for _, marker := range set {
			if strings.Contains(lower, marker) {
				return ""
			}
		}
	}
	return "audience text names no size, industry, role, or company stage"
}

// ValidatePositioning checks that a positioning statement is long enough to
// say something and does not match the generic-provider templates. Returns
// the reject reason, or "" when the text passes.
func ValidatePositioning(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(strings.Fields(trimmed)) < 5 {
		return "positioning statement under 5 words"
	}
	if genericPositioning.MatchString(trimmed) {
		return "matches generic-provider positioning template"
	}
	return ""
}

// Validate dispatches to the named specificity check. Non-string values pass;
// specificity only applies to prose fields.
func Validate(check Check, value any, baseline bool) string {
	text, ok := value.(string)
	if !ok {
		return ""
	}
	switch check {
	case CheckAudience:
		return ValidateAudience(text, baseline)
	case CheckPositioning:
		return ValidatePositioning(text)
	default:
		return ""
	}
}
