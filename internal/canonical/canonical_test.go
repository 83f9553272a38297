package canonical

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/agency-ops/internal/authority"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/schema"
	"github.com/signalworks/agency-ops/internal/store"
)

var testNow = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestCanonicalizer(t *testing.T) (*Canonicalizer, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	c := New(st, schema.Default(), authority.DefaultRegistry(),
		WithNow(func() time.Time { return testNow }))
	return c, st
}

func seed(t *testing.T, st *store.MemoryStore, entityID string, fn func(*model.Graph)) {
	t.Helper()
	g := model.NewGraph(entityID)
	fn(g)
	require.NoError(t, st.SaveGraph(context.Background(), g, "seed"))
	st.Saves = 0
}

func TestCanonicalize_WritesProposedField(t *testing.T) {
	c, st := newTestCanonicalizer(t)

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key:        "audience_icp_primary",
		Value:      "B2B SaaS companies with 50-500 employees in fintech",
		Confidence: 0.8,
		Sources:    []string{"https://example.com/about"},
	}}, Options{Source: model.SourceWebsiteAnalysis, RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"audience_icp_primary"}, res.Written)
	assert.Empty(t, res.Rejected)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 1, st.Saves)

	g, err := st.LoadGraph(context.Background(), "acct-1")
	require.NoError(t, err)
	f := g.Resolve("audience.icpPrimary")
	require.NotNil(t, f)
	assert.Equal(t, model.FieldProposed, f.Status)
	assert.Equal(t, 0.8, f.Confidence)
	require.Len(t, f.Provenance, 1)
	assert.Equal(t, model.SourceWebsiteAnalysis, f.Provenance[0].Source)
	assert.Equal(t, "run-1", f.Provenance[0].RunID)
	assert.Equal(t, "B2B SaaS companies with 50-500 employees in fintech.", f.Value,
		"normalization adds trailing punctuation")
}

func TestCanonicalize_GenericPositioningRejected(t *testing.T) {
	c, st := newTestCanonicalizer(t)

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key:        "positioning",
		Value:      "Solutions provider focused on innovation and customer needs",
		Confidence: 0.9,
	}}, Options{Source: model.SourcePlanner})
	require.NoError(t, err)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "positioning", res.Rejected[0].Key)
	assert.NotEmpty(t, res.Rejected[0].Reason)
	assert.Empty(t, res.Written)
	assert.Zero(t, st.Saves, "nothing written, nothing persisted")
}

func TestCanonicalize_ConfirmedFieldImmutable(t *testing.T) {
	c, st := newTestCanonicalizer(t)
	seed(t, st, "acct-1", func(g *model.Graph) {
		g.Ensure("positioning.statement").Record(
			"The only HVAC-focused PPC shop in the Pacific Northwest.",
			model.FieldConfirmed,
			model.ProvenanceEntry{Source: model.SourceUser, Confidence: 1, Timestamp: testNow.AddDate(0, -1, 0)},
		)
	})

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key:        "positioning",
		Value:      "We help HVAC contractors in Seattle win more installs through paid search",
		Confidence: 0.95,
	}}, Options{Source: model.SourcePlanner})
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Reason, "confirmed")
	assert.Zero(t, st.Saves)

	g, _ := st.LoadGraph(context.Background(), "acct-1")
	assert.Equal(t, "The only HVAC-focused PPC shop in the Pacific Northwest.",
		g.Resolve("positioning.statement").Value)
}

func TestCanonicalize_OperatorForceOverridesConfirmed(t *testing.T) {
	c, st := newTestCanonicalizer(t)
	seed(t, st, "acct-1", func(g *model.Graph) {
		g.Ensure("goals.primary").Record("Double inbound leads by Q4.",
			model.FieldConfirmed,
			model.ProvenanceEntry{Source: model.SourceUser, Confidence: 1, Timestamp: testNow.AddDate(0, -2, 0)})
	})

	// Automated force is ignored.
	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key: "primary_goal", Value: "Triple organic traffic in a year", Confidence: 0.9,
	}}, Options{Source: model.SourcePlanner, ForceOverwrite: true})
	require.NoError(t, err)
	assert.Len(t, res.Skipped, 1)

	res, err = c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key: "primary_goal", Value: "Hit 40 booked demos per month by December", Confidence: 1,
	}}, Options{Source: model.SourceUser, ForceOverwrite: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"primary_goal"}, res.Written)

	g, _ := st.LoadGraph(context.Background(), "acct-1")
	f := g.Resolve("goals.primary")
	assert.Equal(t, model.FieldConfirmed, f.Status, "operator writes land confirmed")
	assert.Equal(t, "Hit 40 booked demos per month by December.", f.Value)
	assert.Len(t, f.Provenance, 2, "prior provenance kept")
}

func TestCanonicalize_ConfidenceMonotonicity(t *testing.T) {
	c, st := newTestCanonicalizer(t)
	seed(t, st, "acct-1", func(g *model.Graph) {
		g.Ensure("identity.industry").Record("Commercial landscaping.",
			model.FieldProposed,
			model.ProvenanceEntry{Source: model.SourceWebsiteAnalysis, Confidence: 0.8, Timestamp: testNow.AddDate(0, 0, -7)})
	})

	for _, conf := range []float64{0.5, 0.8} {
		res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
			Key: "industry", Value: "Commercial real estate services", Confidence: conf,
		}}, Options{Source: model.SourceMarketAnalysis})
		require.NoError(t, err)
		require.Len(t, res.Skipped, 1, "confidence %.2f must not beat 0.80", conf)
		assert.Contains(t, res.Skipped[0].Reason, "confidence")
	}
	assert.Zero(t, st.Saves)

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key: "industry", Value: "Commercial real estate services", Confidence: 0.9,
	}}, Options{Source: model.SourceMarketAnalysis})
	require.NoError(t, err)
	assert.Equal(t, []string{"industry"}, res.Written)

	g, _ := st.LoadGraph(context.Background(), "acct-1")
	assert.Equal(t, "Commercial real estate services.", g.Resolve("identity.industry").Value)
}

func TestCanonicalize_GateOrder(t *testing.T) {
	c, _ := newTestCanonicalizer(t)

	tests := []struct {
		name     string
		cand     model.Candidate
		opts     Options
		rejected bool
		reason   string
	}{
		{
			name:   "placeholder value skipped",
			cand:   model.Candidate{Key: "industry", Value: "n/a", Confidence: 0.9},
			opts:   Options{Source: model.SourceMarketAnalysis},
			reason: "placeholder",
		},
		{
			name:     "unknown key rejected",
			cand:     model.Candidate{Key: "favorite_color", Value: "a perfectly fine value", Confidence: 0.9},
			opts:     Options{Source: model.SourceMarketAnalysis},
			rejected: true,
			reason:   "unknown field key",
		},
		{
			name:   "unauthorized proposer skipped",
			cand:   model.Candidate{Key: "company_name", Value: "Cedar & Pine Outfitters", Confidence: 0.9},
			opts:   Options{Source: model.SourcePlanner},
			reason: "may not propose",
		},
		{
			name:     "exclusive domain rejected even for high confidence",
			cand:     model.Candidate{Key: "top_competitors", Value: []string{"Acme", "Globex"}, Confidence: 0.99},
			opts:     Options{Source: model.SourceWebsiteAnalysis},
			rejected: true,
			reason:   "accepts writes only from",
		},
		{
			name:     "operator cannot touch exclusive domain",
			cand:     model.Candidate{Key: "competitive_rankings", Value: []string{"1. Acme"}, Confidence: 1},
			opts:     Options{Source: model.SourceUser, ForceOverwrite: true},
			rejected: true,
			reason:   "accepts writes only from",
		},
		{
			name:     "reject pattern rejected",
			cand:     model.Candidate{Key: "company_name", Value: "Welcome", Confidence: 0.9},
			opts:     Options{Source: model.SourceWebsiteAnalysis},
			rejected: true,
		},
		{
			name:     "hedge text rejected",
			cand:     model.Candidate{Key: "industry", Value: "Unable to determine the industry from available sources", Confidence: 0.9},
			opts:     Options{Source: model.SourceMarketAnalysis},
			rejected: true,
			reason:   "hedge",
		},
		{
			name:     "vague audience rejected",
			cand:     model.Candidate{Key: "audience_icp_primary", Value: "People who want good products", Confidence: 0.9},
			opts:     Options{Source: model.SourceMarketAnalysis},
			rejected: true,
			reason:   "audience",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := c.Canonicalize(context.Background(), "acct-order", []model.Candidate{tc.cand}, tc.opts)
			require.NoError(t, err)
			assert.Empty(t, res.Written)
			outcomes := res.Skipped
			if tc.rejected {
				outcomes = res.Rejected
				assert.Empty(t, res.Skipped)
			} else {
				assert.Empty(t, res.Rejected)
			}
			require.Len(t, outcomes, 1)
			if tc.reason != "" {
				assert.Contains(t, outcomes[0].Reason, tc.reason)
			}
		})
	}
}

func TestCanonicalize_BaselineAudienceMode(t *testing.T) {
	c, _ := newTestCanonicalizer(t)

	cand := model.Candidate{
		Key: "audience_icp_primary", Value: "Local homeowners nearby", Confidence: 0.7,
	}

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{cand},
		Options{Source: model.SourceWebsiteAnalysis, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Rejected, 1, "no concrete marker in strict mode")

	res, err = c.Canonicalize(context.Background(), "acct-1", []model.Candidate{cand},
		Options{Source: model.SourceWebsiteAnalysis, DryRun: true, Baseline: true})
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)
}

func TestCanonicalize_BatchIsPartialButPersistsOnce(t *testing.T) {
	c, st := newTestCanonicalizer(t)

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{
		{Key: "company_name", Value: "Harbor Light Electric", Confidence: 0.85},
		{Key: "mystery_key", Value: "a perfectly fine value", Confidence: 0.85},
		{Key: "industry", Value: "tbd", Confidence: 0.85},
		{Key: "website_url", Value: "https://harborlightelectric.com", Confidence: 0.85},
	}, Options{Source: model.SourceWebsiteAnalysis, RunID: "run-7"})
	require.NoError(t, err)

	assert.Equal(t, []string{"company_name", "website_url"}, res.Written)
	assert.Len(t, res.Rejected, 1)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, st.Saves, "one persist for the whole batch")
}

func TestCanonicalize_DryRunNeverPersists(t *testing.T) {
	c, st := newTestCanonicalizer(t)

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{
		{Key: "company_name", Value: "Harbor Light Electric", Confidence: 0.85},
	}, Options{Source: model.SourceWebsiteAnalysis, DryRun: true})
	require.NoError(t, err)

	assert.Len(t, res.Written, 1)
	assert.Zero(t, st.Saves)
	g, err := st.LoadGraph(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestCanonicalize_StoreFailureIsBatchFailure(t *testing.T) {
	c, st := newTestCanonicalizer(t)
	st.FailSave = errors.New("connection reset")

	_, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{
		{Key: "company_name", Value: "Harbor Light Electric", Confidence: 0.85},
	}, Options{Source: model.SourceWebsiteAnalysis})
	require.Error(t, err)

	st.FailSave = nil
	st.FailLoad = errors.New("timeout")
	_, err = c.Canonicalize(context.Background(), "acct-1", nil, Options{Source: model.SourceUser})
	require.Error(t, err)
}

func TestCanonicalize_LockedFieldSkipped(t *testing.T) {
	c, st := newTestCanonicalizer(t)
	seed(t, st, "acct-1", func(g *model.Graph) {
		f := g.Ensure("brand.voice")
		f.Record("Dry humor, plain language.", model.FieldProposed,
			model.ProvenanceEntry{Source: model.SourceWebsiteAnalysis, Confidence: 0.7, Timestamp: testNow.AddDate(0, 0, -3)})
		f.Locked = true
		f.LockReason = "client signed off on voice"
	})

	res, err := c.Canonicalize(context.Background(), "acct-1", []model.Candidate{{
		Key: "brand_voice", Value: "Bold, energetic, exclamation-heavy", Confidence: 0.95,
	}}, Options{Source: model.SourcePlanner})
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Reason, "locked")
	assert.Contains(t, res.Skipped[0].Reason, "client signed off")
}

func TestConfirmAndLockLifecycle(t *testing.T) {
	c, st := newTestCanonicalizer(t)
	ctx := context.Background()
	seed(t, st, "acct-1", func(g *model.Graph) {
		g.Ensure("positioning.valueProposition").Record(
			"Fixed-fee bookkeeping for restaurant groups with weekly close.",
			model.FieldProposed,
			model.ProvenanceEntry{Source: model.SourcePlanner, Confidence: 0.75, Timestamp: testNow.AddDate(0, 0, -10)})
	})

	require.NoError(t, c.ConfirmField(ctx, "acct-1", "value_proposition"))

	g, _ := st.LoadGraph(ctx, "acct-1")
	f := g.Resolve("positioning.valueProposition")
	assert.Equal(t, model.FieldConfirmed, f.Status)
	require.NotNil(t, f.VerifiedAt)
	assert.True(t, f.VerifiedAt.Equal(testNow))
	assert.Equal(t, model.SourceUser, f.Provenance[0].Source)

	require.NoError(t, c.LockField(ctx, "acct-1", "value_proposition", "board-approved copy"))
	g, _ = st.LoadGraph(ctx, "acct-1")
	assert.True(t, g.Resolve("positioning.valueProposition").Locked)

	require.NoError(t, c.UnlockField(ctx, "acct-1", "value_proposition"))
	g, _ = st.LoadGraph(ctx, "acct-1")
	assert.False(t, g.Resolve("positioning.valueProposition").Locked)

	assert.Error(t, c.ConfirmField(ctx, "acct-1", "brand_story"), "cannot confirm a missing field")
	assert.Error(t, c.ConfirmField(ctx, "acct-9", "value_proposition"), "no graph for entity")
}
