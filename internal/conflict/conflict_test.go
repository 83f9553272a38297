package conflict

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/agency-ops/internal/model"
)

var (
	t0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func existingField(value any, source model.Source) *model.Field {
	return &model.Field{
		Path:       "audience.icpPrimary",
		Value:      value,
		Status:     model.FieldProposed,
		Confidence: 0.7,
		SetAt:      t0,
		Provenance: []model.ProvenanceEntry{
			{Source: source, Confidence: 0.7, Timestamp: t0},
		},
	}
}

func incomingSide(value any, source model.Source) model.ConflictSide {
	return model.ConflictSide{Value: value, Source: source, Confidence: 0.8, Timestamp: t1}
}

func TestDetect_NoConflict(t *testing.T) {
	// No current value.
	assert.Nil(t, Detect("a.b", nil, incomingSide("x", model.SourceUser)))
	assert.Nil(t, Detect("a.b", &model.Field{Status: model.FieldMissing}, incomingSide("x", model.SourceUser)))

	// Deep-equal values.
	f := existingField([]any{"one", "two"}, model.SourceWebsiteAnalysis)
	assert.Nil(t, Detect(f.Path, f, incomingSide([]any{"one", "two"}, model.SourceMarketAnalysis)))

	// Locked field.
	f = existingField("kept", model.SourceWebsiteAnalysis)
	f.Locked = true
	assert.Nil(t, Detect(f.Path, f, incomingSide("changed", model.SourceMarketAnalysis)))
}

func TestDetect_RecommendedStrategy(t *testing.T) {
	tests := []struct {
		name     string
		current  model.Source
		incoming model.Source
		want     model.ResolutionStrategy
	}{
		{"user on current side", model.SourceUser, model.SourceMarketAnalysis, model.ResolveUserWins},
		{"user on incoming side", model.SourceWebsiteAnalysis, model.SourceUser, model.ResolveUserWins},
		{"inferred current", model.SourceInferred, model.SourceWebsiteAnalysis, model.ResolveNewerWins},
		{"inferred incoming", model.SourceMarketAnalysis, model.SourceInferred, model.ResolveNewerWins},
		{"api beats scrape", model.SourceWebsiteAnalysis, model.SourceMarketAnalysis, model.ResolveSourceWins},
		{"scrape vs scrape", model.SourceWebsiteAnalysis, model.SourceCompetitiveAnalysis, model.ResolveManual},
		{"planner vs scrape", model.SourcePlanner, model.SourceWebsiteAnalysis, model.ResolveManual},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := existingField("old value", tc.current)
			c := Detect(f.Path, f, incomingSide("new value", tc.incoming))
			require.NotNil(t, c)
			assert.Equal(t, tc.want, c.Recommended)
			assert.False(t, c.Resolved)
		})
	}
}

func TestAutoResolve_PriorityOrder(t *testing.T) {
	rules := DefaultRules()

	f := existingField("scraped", model.SourceWebsiteAnalysis)
	c := Detect(f.Path, f, incomingSide("from api", model.SourceMarketAnalysis))
	require.NotNil(t, c)

	got := AutoResolve(*c, rules)
	require.True(t, got.Resolved)
	require.NotNil(t, got.Winner)
	assert.Equal(t, "from api", got.Winner.Value)
	assert.Equal(t, model.SourceMarketAnalysis, got.Winner.Source)
	assert.Equal(t, "api-over-scrape-over-inference", got.RuleName)
	assert.True(t, got.Auto)
}

// The first matching rule decides even when a later rule would pick the
// other side.
func TestAutoResolve_RulePrecedence(t *testing.T) {
	rules := &RuleSet{Rules: []Rule{
		{
			Name:     "audience-prefers-scrape",
			Pattern:  "audience.*",
			Priority: []model.Source{model.SourceWebsiteAnalysis, model.SourceMarketAnalysis},
		},
		{
			Name:     "global-prefers-api",
			Pattern:  "*",
			Priority: []model.Source{model.SourceMarketAnalysis, model.SourceWebsiteAnalysis},
		},
	}}

	f := existingField("scraped", model.SourceWebsiteAnalysis)
	c := Detect(f.Path, f, incomingSide("from api", model.SourceMarketAnalysis))
	require.NotNil(t, c)

	got := AutoResolve(*c, rules)
	require.True(t, got.Resolved)
	assert.Equal(t, "audience-prefers-scrape", got.RuleName)
	assert.Equal(t, "scraped", got.Winner.Value)

	// Disabling the specific rule falls through to the global one.
	rules.Rules[0].Disabled = true
	got = AutoResolve(*c, rules)
	require.True(t, got.Resolved)
	assert.Equal(t, "global-prefers-api", got.RuleName)
	assert.Equal(t, "from api", got.Winner.Value)
}

func TestAutoResolve_NoSourceInList(t *testing.T) {
	rules := &RuleSet{Rules: []Rule{
		{
			Name:     "narrow",
			Pattern:  "audience.*",
			Priority: []model.Source{model.SourceImport},
		},
	}}

	f := existingField("scraped", model.SourceWebsiteAnalysis)
	c := Detect(f.Path, f, incomingSide("planned", model.SourcePlanner))
	require.NotNil(t, c)

	got := AutoResolve(*c, rules)
	assert.False(t, got.Resolved)
	assert.Nil(t, got.Winner)
}

func TestAutoResolve_NoMatchingRule(t *testing.T) {
	rules := &RuleSet{Rules: []Rule{
		{Name: "other", Pattern: "budget.*", Priority: []model.Source{model.SourceUser}},
	}}

	f := existingField("scraped", model.SourceWebsiteAnalysis)
	c := Detect(f.Path, f, incomingSide("planned", model.SourcePlanner))
	require.NotNil(t, c)

	got := AutoResolve(*c, rules)
	assert.False(t, got.Resolved)
}

func TestAutoResolve_SameSourceTieGoesToNewer(t *testing.T) {
	rules := DefaultRules()

	f := existingField("first scrape", model.SourceWebsiteAnalysis)
	c := Detect(f.Path, f, incomingSide("second scrape", model.SourceWebsiteAnalysis))
	require.NotNil(t, c)

	got := AutoResolve(*c, rules)
	require.True(t, got.Resolved)
	assert.Equal(t, "second scrape", got.Winner.Value)
}

func TestAutoResolve_Deterministic(t *testing.T) {
	rules := DefaultRules()
	f := existingField("scraped", model.SourceWebsiteAnalysis)
	c := Detect(f.Path, f, incomingSide("from api", model.SourceMarketAnalysis))
	require.NotNil(t, c)

	first := AutoResolve(*c, rules)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AutoResolve(*c, rules))
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/rules.yaml"
	content := `resolution:
  rules:
    - name: custom
      pattern: "brand.*"
      priority: [user, website_analysis]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, "custom", rs.Rules[0].Name)
	assert.Equal(t, []model.Source{model.SourceUser, model.SourceWebsiteAnalysis}, rs.Rules[0].Priority)
}

func TestDetectBatch(t *testing.T) {
	g := model.NewGraph("acct-1")
	f := g.Ensure("audience.icpPrimary")
	f.Record("old audience text", model.FieldProposed, model.ProvenanceEntry{
		Source: model.SourceWebsiteAnalysis, Confidence: 0.6, Timestamp: t0,
	})

	pathFor := func(key string) string {
		if key == "audience_icp_primary" {
			return "audience.icpPrimary"
		}
		return ""
	}

	conflicts := DetectBatch(g, []model.Candidate{
		{Key: "audience_icp_primary", Value: "new audience text", Confidence: 0.9},
		{Key: "unmapped_key", Value: "ignored", Confidence: 0.9},
	}, model.SourceMarketAnalysis, pathFor, t1)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "audience.icpPrimary", conflicts[0].FieldPath)
	assert.Equal(t, model.ResolveSourceWins, conflicts[0].Recommended)
}
