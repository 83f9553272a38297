package model

// Source classifies a producer that proposes or confirms field values.
type Source string

const (
	// SourceUser is the human operator. User writes confirm facts and may
	// force-override automated values.
	SourceUser Source = "user"
	// SourcePlanner is the planning module (AI drafting of strategy text).
	SourcePlanner Source = "planner"
	// SourceImport is a bulk import from an external system of record.
	SourceImport Source = "import"
	// SourceWebsiteAnalysis scrapes facts from the client's own web presence.
	SourceWebsiteAnalysis Source = "website_analysis"
	// SourceMarketAnalysis pulls facts from third-party market data APIs.
	SourceMarketAnalysis Source = "market_analysis"
	// SourceCompetitiveAnalysis is the designated producer for the
	// competitive landscape domain.
	SourceCompetitiveAnalysis Source = "competitive_analysis"
	// SourceInferred marks model inference without direct evidence.
	SourceInferred Source = "inferred"
)

// APISourced reports whether the source draws from structured API data.
func (s Source) APISourced() bool {
	return s == SourceMarketAnalysis || s == SourceImport
}

// ScrapeSourced reports whether the source draws from scraped web content.
func (s Source) ScrapeSourced() bool {
	return s == SourceWebsiteAnalysis || s == SourceCompetitiveAnalysis
}

// LowTrust reports whether the source is an unevidenced inference.
func (s Source) LowTrust() bool {
	return s == SourceInferred
}
