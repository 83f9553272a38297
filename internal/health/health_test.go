package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalworks/agency-ops/internal/freshness"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/schema"
)

func TestAggregate_WeightBlend(t *testing.T) {
	s := Aggregate(Input{
		EntityID:        "acct-1",
		Filled:          8,
		TotalRequired:   10,
		FreshnessScores: []float64{90, 70},
		Confidences:     []float64{0.9, 0.7},
	}, DefaultWeights)

	assert.Equal(t, 80.0, s.Completeness)
	assert.Equal(t, 80.0, s.Freshness)
	assert.Equal(t, 100.0, s.Consistency)
	assert.Equal(t, 80.0, s.Confidence)
	// 0.30*80 + 0.25*80 + 0.25*100 + 0.20*80 = 85
	assert.Equal(t, 85, s.Overall)
}

func TestAggregate_ConflictPenalty(t *testing.T) {
	for conflicts, want := range map[int]float64{0: 100, 1: 80, 3: 40, 5: 0, 8: 0} {
		s := Aggregate(Input{UnresolvedConflicts: conflicts}, DefaultWeights)
		assert.Equal(t, want, s.Consistency, "%d unresolved conflicts", conflicts)
	}
}

func TestAggregate_EmptyInputScoresZero(t *testing.T) {
	s := Aggregate(Input{EntityID: "acct-1"}, DefaultWeights)

	assert.Zero(t, s.Completeness)
	assert.Zero(t, s.Freshness)
	assert.Zero(t, s.Confidence)
	assert.Equal(t, 100.0, s.Consistency, "no conflicts means fully consistent")
	assert.Equal(t, 25, s.Overall)
}

func TestAggregate_Rounding(t *testing.T) {
	s := Aggregate(Input{
		Filled: 1, TotalRequired: 3,
		FreshnessScores: []float64{50},
		Confidences:     []float64{0.5},
	}, DefaultWeights)

	// 0.30*33.33 + 0.25*50 + 0.25*100 + 0.20*50 = 57.5, rounds to 58.
	assert.Equal(t, 58, s.Overall)
}

func TestFromGraph(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	reg := schema.Default()
	fc := freshness.DefaultConfig()

	s := FromGraph("acct-1", nil, reg, fc, 0, now, DefaultWeights)
	assert.Zero(t, s.FilledFields)
	assert.Positive(t, s.TotalRequired)
	assert.Zero(t, s.Freshness)

	g := model.NewGraph("acct-1")
	g.Ensure("identity.companyName").Record("Harbor Light Electric.", model.FieldConfirmed,
		model.ProvenanceEntry{Source: model.SourceUser, Confidence: 1, Timestamp: now.AddDate(0, 0, -10)})
	g.Ensure("audience.icpPrimary").Record("Homeowners in older housing stock.", model.FieldProposed,
		model.ProvenanceEntry{Source: model.SourceWebsiteAnalysis, Confidence: 0.7, Timestamp: now.AddDate(0, 0, -30)})

	s = FromGraph("acct-1", g, reg, fc, 1, now, DefaultWeights)
	assert.Equal(t, 2, s.FilledFields)
	assert.Equal(t, 80.0, s.Consistency)
	assert.Greater(t, s.Freshness, 0.0)
	assert.InDelta(t, 85.0, s.Confidence, 0.01, "mean of 1.0 and 0.7")
	assert.Greater(t, s.Overall, 0)
}
