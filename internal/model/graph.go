package model

import (
	"sort"
	"time"
)

// FieldStatus is the lifecycle state of a graph field.
type FieldStatus string

const (
	// FieldMissing means no value has been accepted yet.
	FieldMissing FieldStatus = "missing"
	// FieldProposed means an automated producer wrote the value; it has not
	// been reviewed by the operator.
	FieldProposed FieldStatus = "proposed"
	// FieldConfirmed means the operator wrote or approved the value.
	// Confirmed values are immutable to automated producers.
	FieldConfirmed FieldStatus = "confirmed"
)

// Field is a single named fact in the knowledge graph. Fields are owned by
// the graph for their business entity and mutated only through the
// canonicalizer or a direct operator update.
type Field struct {
	Path       string            `json:"path"`
	Value      any               `json:"value"`
	Status     FieldStatus       `json:"status"`
	Confidence float64           `json:"confidence"`
	Provenance []ProvenanceEntry `json:"provenance,omitempty"`
	Locked     bool              `json:"locked,omitempty"`
	LockReason string            `json:"lock_reason,omitempty"`
	SetAt      time.Time         `json:"set_at"`
	VerifiedAt *time.Time        `json:"verified_at,omitempty"`
}

// Record appends a provenance entry (newest first, capped) and updates the
// field's current value, confidence, and timestamps.
func (f *Field) Record(value any, status FieldStatus, e ProvenanceEntry) {
	f.Value = value
	f.Status = status
	f.Confidence = e.Confidence
	f.SetAt = e.Timestamp
	f.Provenance = PrependProvenance(f.Provenance, e)
}

// Graph is the long-lived mutable knowledge graph for one business entity.
// Fields are keyed by dot-separated path (domain.fieldName[.subpath]).
type Graph struct {
	EntityID  string            `json:"entity_id"`
	Fields    map[string]*Field `json:"fields"`
	UpdatedAt time.Time         `json:"updated_at"`
	UpdatedBy string            `json:"updated_by,omitempty"`
}

// NewGraph creates an empty graph for the given entity.
func NewGraph(entityID string) *Graph {
	return &Graph{
		EntityID: entityID,
		Fields:   make(map[string]*Field),
	}
}

// Resolve returns the field at the given path, or nil if absent.
func (g *Graph) Resolve(path string) *Field {
	if g == nil || g.Fields == nil {
		return nil
	}
	return g.Fields[path]
}

// Ensure returns the field at path, creating a missing-status node if needed.
func (g *Graph) Ensure(path string) *Field {
	if f := g.Fields[path]; f != nil {
		return f
	}
	f := &Field{Path: path, Status: FieldMissing}
	g.Fields[path] = f
	return f
}

// Paths returns all field paths in sorted order.
func (g *Graph) Paths() []string {
	if g == nil {
		return nil
	}
	paths := make([]string, 0, len(g.Fields))
	for p := range g.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy of the graph. The canonicalizer mutates a clone
// per batch and persists it; validation never sees the live graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		EntityID:  g.EntityID,
		Fields:    make(map[string]*Field, len(g.Fields)),
		UpdatedAt: g.UpdatedAt,
		UpdatedBy: g.UpdatedBy,
	}
	for p, f := range g.Fields {
		cp := *f
		cp.Value = cloneValue(f.Value)
		cp.Provenance = make([]ProvenanceEntry, len(f.Provenance))
		copy(cp.Provenance, f.Provenance)
		if f.VerifiedAt != nil {
			t := *f.VerifiedAt
			cp.VerifiedAt = &t
		}
		out.Fields[p] = &cp
	}
	return out
}

// cloneValue deep-copies JSON-shaped values (strings, numbers, bools,
// []any, []string, map[string]any).
func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return val
	}
}
