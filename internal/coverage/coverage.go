// Package coverage evaluates how ready an entity graph is to drive a
// workflow. Both views over the registry — the flat required-key audit and
// the weighted per-domain evaluation — share one RequirementRule
// representation; a flat key is a one-element any-of rule.
package coverage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/quality"
	"github.com/signalworks/agency-ops/internal/schema"
)

// RuleKind is the satisfaction mode of a requirement rule.
type RuleKind string

const (
	RequireAll     RuleKind = "require_all"
	RequireAnyOf   RuleKind = "require_any_of"
	RequireAtLeast RuleKind = "require_at_least"
)

// RequirementRule names the fields a domain needs and how many of them.
type RequirementRule struct {
	Kind RuleKind `json:"kind" yaml:"kind"`
	// Keys are schema keys; they resolve to paths through the registry.
	Keys []string `json:"keys" yaml:"keys"`
	// AtLeast is the minimum satisfied count for RequireAtLeast rules.
	AtLeast int `json:"at_least,omitempty" yaml:"at_least,omitempty"`
}

// needed returns how many of the rule's keys must be satisfied.
func (r RequirementRule) needed() int {
	switch r.Kind {
	case RequireAll:
		return len(r.Keys)
	case RequireAnyOf:
		if len(r.Keys) == 0 {
			return 0
		}
		return 1
	case RequireAtLeast:
		return min(r.AtLeast, len(r.Keys))
	default:
		return len(r.Keys)
	}
}

// WeightedDomain is one scored requirement group.
type WeightedDomain struct {
	Name   string          `json:"name" yaml:"name"`
	Weight float64         `json:"weight" yaml:"weight"`
	Rule   RequirementRule `json:"rule" yaml:"rule"`
	// HardBlocker escalates the domain's absence to critical severity.
	HardBlocker bool `json:"hard_blocker,omitempty" yaml:"hard_blocker,omitempty"`
}

// Severity ranks blockers for display.
type Severity string

const (
	SeverityBlocker  Severity = "blocker"
	SeverityCritical Severity = "critical"
)

// Blocker is one unmet requirement, with enough context to act on it.
type Blocker struct {
	Domain      string            `json:"domain"`
	Weight      float64           `json:"weight"`
	Severity    Severity          `json:"severity"`
	Message     string            `json:"message"`
	MissingKeys []string          `json:"missing_keys,omitempty"`
	Suggestions map[string]string `json:"suggestions,omitempty"`
}

// Report is the outcome of a coverage evaluation.
type Report struct {
	EntityID     string    `json:"entity_id"`
	Workflow     string    `json:"workflow,omitempty"`
	Completeness float64   `json:"completeness"`
	Blockers     []Blocker `json:"blockers"`
	Summary      string    `json:"summary"`
}

// Ready reports whether the workflow can proceed.
func (r *Report) Ready() bool { return len(r.Blockers) == 0 }

// SimilarityThreshold is the minimum normalized edit-distance similarity for
// a "closest existing key" suggestion.
const SimilarityThreshold = 0.65

// Evaluator scores graphs against requirement rules.
type Evaluator struct {
	schema *schema.Registry
	// RequireConfirmed counts proposed-but-unreviewed values as missing.
	// Workflow gates need confirmed facts, not merely proposed ones.
	RequireConfirmed bool
}

// NewEvaluator builds an evaluator over the field registry.
func NewEvaluator(reg *schema.Registry) *Evaluator {
	return &Evaluator{schema: reg, RequireConfirmed: true}
}

// pathFor resolves a schema key (or raw path) to the stored field path.
func (e *Evaluator) pathFor(key string) string {
	if def := e.schema.ByKey(key); def != nil {
		return def.Path
	}
	return key
}

// satisfied reports whether the graph holds a usable value for the key.
func (e *Evaluator) satisfied(g *model.Graph, key string) bool {
	f := g.Resolve(e.pathFor(key))
	if f == nil || !quality.IsMeaningful(f.Value) {
		return false
	}
	if e.RequireConfirmed && f.Status != model.FieldConfirmed {
		return false
	}
	return true
}

// Evaluate scores the graph against the weighted domains. A nil graph is a
// valid input and yields zero coverage everywhere, never an error.
func (e *Evaluator) Evaluate(entityID string, g *model.Graph, workflow string, domains []WeightedDomain) *Report {
	rep := &Report{EntityID: entityID, Workflow: workflow}

	var weightSum, covered float64
	for _, d := range domains {
		weightSum += d.Weight

		total := len(d.Rule.Keys)
		if total == 0 {
			covered += d.Weight
			continue
		}
		var hit int
		var missing []string
		for _, key := range d.Rule.Keys {
			if e.satisfied(g, key) {
				hit++
			} else {
				missing = append(missing, key)
			}
		}

		// A met rule earns full domain credit; an unmet one earns
		// partial credit per satisfied subcheck.
		if hit >= d.Rule.needed() {
			covered += d.Weight
			continue
		}
		covered += float64(hit) / float64(total) * d.Weight
		rep.Blockers = append(rep.Blockers, e.blocker(g, d, missing, hit))
	}

	if weightSum > 0 {
		rep.Completeness = covered / weightSum * 100
	}
	sortBlockers(rep.Blockers)
	rep.Summary = summarize(rep, workflow)
	return rep
}

func (e *Evaluator) blocker(g *model.Graph, d WeightedDomain, missing []string, hit int) Blocker {
	b := Blocker{
		Domain:      d.Name,
		Weight:      d.Weight,
		Severity:    SeverityBlocker,
		MissingKeys: missing,
		Suggestions: e.suggest(g, missing),
	}
	switch {
	case d.HardBlocker:
		b.Severity = SeverityCritical
		b.Message = fmt.Sprintf("%s data is required before any workflow can proceed; missing %s",
			d.Name, strings.Join(missing, ", "))
	case d.Rule.Kind == RequireAnyOf:
		b.Message = fmt.Sprintf("%s needs at least one of: %s", d.Name, strings.Join(d.Rule.Keys, ", "))
	case d.Rule.Kind == RequireAtLeast:
		b.Message = fmt.Sprintf("%s needs %d of %d fields; have %d",
			d.Name, d.Rule.needed(), len(d.Rule.Keys), hit)
	default:
		b.Message = fmt.Sprintf("%s is missing %s", d.Name, strings.Join(missing, ", "))
	}
	return b
}

// suggest finds the closest existing graph path for each missing key,
// surfacing likely renames during schema migrations.
func (e *Evaluator) suggest(g *model.Graph, missing []string) map[string]string {
	if g == nil {
		return nil
	}
	paths := g.Paths()
	if len(paths) == 0 {
		return nil
	}
	var out map[string]string
	for _, key := range missing {
		want := e.pathFor(key)
		bestScore := SimilarityThreshold
		best := ""
		for _, p := range paths {
			if s := similarity(want, p); s > bestScore {
				bestScore, best = s, p
			}
		}
		if best != "" {
			if out == nil {
				out = make(map[string]string)
			}
			out[key] = best
		}
	}
	return out
}

// similarity is a normalized edit-distance score in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	d := levenshtein.Distance(strings.ToLower(a), strings.ToLower(b), nil)
	return 1 - float64(d)/float64(longest)
}

// sortBlockers orders highest weight first, name as tiebreaker.
func sortBlockers(bs []Blocker) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].Weight != bs[j].Weight {
			return bs[i].Weight > bs[j].Weight
		}
		return bs[i].Domain < bs[j].Domain
	})
}

func summarize(rep *Report, workflow string) string {
	name := workflow
	if name == "" {
		name = "workflow"
	}
	if len(rep.Blockers) == 0 {
		return fmt.Sprintf("%s is ready: %.0f%% complete", name, rep.Completeness)
	}
	return fmt.Sprintf("%s is blocked: %.0f%% complete, %d unmet requirement(s), start with %s",
		name, rep.Completeness, len(rep.Blockers), rep.Blockers[0].Domain)
}
