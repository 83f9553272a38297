// Package schema holds the canonical field registry: every field key the
// graph accepts, its path, value type, requiring workflows, permitted
// proposers, and per-field validation overrides. The registry is locked
// configuration; changing it is a schema migration, not a runtime act.
package schema

import (
	"regexp"

	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/quality"
)

// ValueKind is the declared type of a field's value.
type ValueKind string

const (
	KindText   ValueKind = "text"
	KindList   ValueKind = "list"
	KindNumber ValueKind = "number"
)

// compiledReject pairs a reject pattern with its compiled form so reasons
// can report the pattern that matched.
type compiledReject struct {
	src string
	re  *regexp.Regexp
}

// FieldDefinition is one schema entry.
type FieldDefinition struct {
	Key       string         `json:"key"`
	Path      string         `json:"path"`
	Kind      ValueKind      `json:"kind"`
	Workflows []string       `json:"workflows,omitempty"`
	Proposers []model.Source `json:"proposers,omitempty"`
	// MinLength/MaxLength override the default text bounds when non-zero.
	MinLength int `json:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty"`
	// RejectPatterns are extra per-field reject regexes.
	RejectPatterns []string `json:"reject_patterns,omitempty"`
	rejects        []compiledReject
	// Check names the specificity validation applied to the field.
	Check quality.Check `json:"check,omitempty"`
}

// MayPropose reports whether the source is in the field's proposer set.
func (d *FieldDefinition) MayPropose(source model.Source) bool {
	for _, s := range d.Proposers {
		if s == source {
			return true
		}
	}
	return false
}

// RequiredFor reports whether the field is required by the workflow.
func (d *FieldDefinition) RequiredFor(workflow string) bool {
	for _, w := range d.Workflows {
		if w == workflow {
			return true
		}
	}
	return false
}

// Registry is an indexed collection of field definitions.
type Registry struct {
	Defs       []FieldDefinition
	byKey      map[string]*FieldDefinition
	byPath     map[string]*FieldDefinition
	byWorkflow map[string][]*FieldDefinition
}

// NewRegistry indexes the definitions and pre-compiles reject patterns.
// Patterns that fail to compile are dropped; the registry stays usable.
func NewRegistry(defs []FieldDefinition) *Registry {
	r := &Registry{
		Defs:       defs,
		byKey:      make(map[string]*FieldDefinition, len(defs)),
		byPath:     make(map[string]*FieldDefinition, len(defs)),
		byWorkflow: make(map[string][]*FieldDefinition),
	}
	for i := range r.Defs {
		d := &r.Defs[i]
		for _, p := range d.RejectPatterns {
			if re, err := regexp.Compile(p); err == nil {
				d.rejects = append(d.rejects, compiledReject{src: p, re: re})
			}
		}
		r.byKey[d.Key] = d
		r.byPath[d.Path] = d
		for _, w := range d.Workflows {
			r.byWorkflow[w] = append(r.byWorkflow[w], d)
		}
	}
	return r
}

// ByKey returns the definition for a field key, or nil.
func (r *Registry) ByKey(key string) *FieldDefinition {
	return r.byKey[key]
}

// ByPath returns the definition mapped to a graph path, or nil.
func (r *Registry) ByPath(path string) *FieldDefinition {
	return r.byPath[path]
}

// ForWorkflow returns the definitions a workflow requires.
func (r *Registry) ForWorkflow(workflow string) []*FieldDefinition {
	return r.byWorkflow[workflow]
}

// Workflows returns the names of all workflows with required fields.
func (r *Registry) Workflows() []string {
	names := make([]string, 0, len(r.byWorkflow))
	for w := range r.byWorkflow {
		names = append(names, w)
	}
	return names
}
