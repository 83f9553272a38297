// Package conflict detects disagreements between a field's current value and
// an incoming candidate, and resolves them against configurable
// source-priority rules. Detection and resolution are pure functions;
// conflicts are derived on demand, never persisted.
package conflict

import (
	"reflect"
	"time"

	"github.com/signalworks/agency-ops/internal/model"
)

// Detect compares the current field state with an incoming candidate value.
// Returns nil when there is nothing to arbitrate: no current value, a locked
// field, or deep-equal values.
func Detect(fieldPath string, current *model.Field, incoming model.ConflictSide) *model.Conflict {
	if current == nil || current.Value == nil || current.Status == model.FieldMissing {
		return nil
	}
	if current.Locked {
		return nil
	}
	if reflect.DeepEqual(current.Value, incoming.Value) {
		return nil
	}

	cur := model.ConflictSide{
		Value:      current.Value,
		Confidence: current.Confidence,
		Timestamp:  current.SetAt,
	}
	if len(current.Provenance) > 0 {
		cur.Source = current.Provenance[0].Source
	}

	return &model.Conflict{
		FieldPath:   fieldPath,
		Current:     cur,
		Incoming:    incoming,
		Recommended: recommend(cur.Source, incoming.Source),
	}
}

// recommend picks the arbitration strategy from the two sources. Operator
// authorship dominates; low-trust inference falls back to recency; API data
// beats scraped data; everything else goes to a human.
func recommend(current, incoming model.Source) model.ResolutionStrategy {
	if current == model.SourceUser || incoming == model.SourceUser {
		return model.ResolveUserWins
	}
	if current.LowTrust() || incoming.LowTrust() {
		return model.ResolveNewerWins
	}
	if (current.APISourced() && incoming.ScrapeSourced()) ||
		(incoming.APISourced() && current.ScrapeSourced()) {
		return model.ResolveSourceWins
	}
	return model.ResolveManual
}

// NewerSide returns the side with the later timestamp; ties go to incoming.
func NewerSide(c *model.Conflict) *model.ConflictSide {
	if c.Current.Timestamp.After(c.Incoming.Timestamp) {
		return &c.Current
	}
	return &c.Incoming
}

// DetectBatch runs Detect for each candidate against the graph, resolving
// candidate keys to paths through the given lookup. Candidates without a
// schema mapping are ignored.
func DetectBatch(g *model.Graph, candidates []model.Candidate, source model.Source, pathFor func(key string) string, now time.Time) []model.Conflict {
	var out []model.Conflict
	for _, cand := range candidates {
		path := pathFor(cand.Key)
		if path == "" {
			continue
		}
		incoming := model.ConflictSide{
			Value:      cand.Value,
			Source:     source,
			Confidence: cand.Confidence,
			Timestamp:  now,
		}
		if c := Detect(path, g.Resolve(path), incoming); c != nil {
			out = append(out, *c)
		}
	}
	return out
}
