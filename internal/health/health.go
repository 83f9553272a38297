// Package health condenses a graph's state into one operator-facing score:
// how complete, fresh, consistent, and well-evidenced the client's knowledge
// is, weighted into a single overall number.
package health

import (
	"math"
	"time"

	"github.com/signalworks/agency-ops/internal/freshness"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/quality"
	"github.com/signalworks/agency-ops/internal/schema"
)

// Weights blends the four component scores into the overall. The defaults
// are part of the product contract; they are configurable but reports from
// different deployments only compare when the weights match.
type Weights struct {
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Freshness    float64 `json:"freshness" yaml:"freshness"`
	Consistency  float64 `json:"consistency" yaml:"consistency"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
}

// DefaultWeights is the standard blend.
var DefaultWeights = Weights{
	Completeness: 0.30,
	Freshness:    0.25,
	Consistency:  0.25,
	Confidence:   0.20,
}

// conflictPenalty is how many consistency points each unresolved conflict
// costs.
const conflictPenalty = 20

// Summary is the aggregated health report for one entity.
type Summary struct {
	EntityID     string  `json:"entity_id"`
	Overall      int     `json:"overall"`
	Completeness float64 `json:"completeness"`
	Freshness    float64 `json:"freshness"`
	Consistency  float64 `json:"consistency"`
	Confidence   float64 `json:"confidence"`

	FilledFields        int `json:"filled_fields"`
	TotalRequired       int `json:"total_required"`
	UnresolvedConflicts int `json:"unresolved_conflicts"`
}

// Input carries the pre-computed component facts.
type Input struct {
	EntityID            string
	Filled              int
	TotalRequired       int
	FreshnessScores     []float64
	UnresolvedConflicts int
	Confidences         []float64
}

// Aggregate computes the summary from component facts. Empty component
// inputs score zero rather than erroring; a brand-new entity is simply
// unhealthy, not broken.
func Aggregate(in Input, w Weights) Summary {
	s := Summary{
		EntityID:            in.EntityID,
		FilledFields:        in.Filled,
		TotalRequired:       in.TotalRequired,
		UnresolvedConflicts: in.UnresolvedConflicts,
	}

	if in.TotalRequired > 0 {
		s.Completeness = float64(in.Filled) / float64(in.TotalRequired) * 100
	}
	s.Freshness = mean(in.FreshnessScores)
	s.Consistency = math.Max(0, 100-float64(conflictPenalty*in.UnresolvedConflicts))
	s.Confidence = mean(in.Confidences) * 100

	s.Overall = int(math.Round(
		w.Completeness*s.Completeness +
			w.Freshness*s.Freshness +
			w.Consistency*s.Consistency +
			w.Confidence*s.Confidence))
	return s
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// FromGraph derives the component inputs from a graph: required fields come
// from the registry's workflow set, freshness from each filled field's
// timestamps, confidence from each field's newest provenance entry. A nil
// graph yields the all-zero summary.
func FromGraph(entityID string, g *model.Graph, reg *schema.Registry, fc freshness.Config, unresolvedConflicts int, now time.Time, w Weights) Summary {
	required := make(map[string]struct{})
	for _, workflow := range reg.Workflows() {
		for _, def := range reg.ForWorkflow(workflow) {
			required[def.Path] = struct{}{}
		}
	}

	in := Input{
		EntityID:            entityID,
		TotalRequired:       len(required),
		UnresolvedConflicts: unresolvedConflicts,
	}

	if g != nil {
		for path := range required {
			f := g.Resolve(path)
			if f == nil || !quality.IsMeaningful(f.Value) {
				continue
			}
			in.Filled++
		}
		for _, path := range g.Paths() {
			f := g.Resolve(path)
			if !quality.IsMeaningful(f.Value) {
				continue
			}
			sc := fc.ScoreField(path, f.SetAt, f.VerifiedAt, now)
			in.FreshnessScores = append(in.FreshnessScores, sc.Score)
			if len(f.Provenance) > 0 {
				in.Confidences = append(in.Confidences, f.Provenance[0].Confidence)
			}
		}
	}
	return Aggregate(in, w)
}
