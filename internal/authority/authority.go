// Package authority implements the domain authority registry: which
// producers may write each graph partition, and which one is canonical.
// The registry is static configuration; lookups have no side effects.
package authority

import (
	"fmt"

	"github.com/signalworks/agency-ops/internal/fieldpath"
	"github.com/signalworks/agency-ops/internal/model"
)

// Domain is a named partition of the graph sharing one write-authority
// policy. Domains are configured at startup, never created at runtime.
type Domain struct {
	Name            string         `json:"name"`
	AllowedSources  []model.Source `json:"allowed_sources"`
	CanonicalSource model.Source   `json:"canonical_source"`
	UserCanOverride bool           `json:"user_can_override"`
	// Exclusive restricts every write in the domain to the canonical
	// source, regardless of AllowedSources and operator privileges.
	Exclusive bool `json:"exclusive,omitempty"`
}

// Allows reports whether the source appears in the domain's allowed set.
func (d *Domain) Allows(source model.Source) bool {
	for _, s := range d.AllowedSources {
		if s == source {
			return true
		}
	}
	return false
}

// WriteDecision is the outcome of validating a proposed write.
type WriteDecision struct {
	Allowed     bool   `json:"allowed"`
	IsCanonical bool   `json:"is_canonical"`
	Reason      string `json:"reason,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

// Registry resolves field paths to domains and enforces write policy.
type Registry struct {
	domains map[string]*Domain
}

// NewRegistry indexes the given domains. Entries may be bare partition names
// ("brand") or full field paths for per-field policy overrides
// ("competitive.rankings").
func NewRegistry(domains []Domain) *Registry {
	r := &Registry{domains: make(map[string]*Domain, len(domains))}
	for i := range domains {
		r.domains[domains[i].Name] = &domains[i]
	}
	return r
}

// ResolveDomain finds the policy for a field path: exact path entry first,
// then the partition prefix. Returns nil for unknown domains.
func (r *Registry) ResolveDomain(path string) *Domain {
	if d, ok := r.domains[path]; ok {
		return d
	}
	return r.domains[fieldpath.Domain(path)]
}

// IsWriteAllowed applies the general authority rule: the operator is always
// allowed unless the domain disables overrides; other sources must appear in
// the allowed set.
func (r *Registry) IsWriteAllowed(source model.Source, d *Domain) bool {
	if d == nil {
		return true
	}
	if source == model.SourceUser {
		return d.UserCanOverride
	}
	return d.Allows(source)
}

// ValidateWrite resolves the domain for a field path and judges the write.
// Unknown domains are allowed with a warning so new fields can be introduced
// ahead of registry updates.
func (r *Registry) ValidateWrite(path string, source model.Source) WriteDecision {
	d := r.ResolveDomain(path)
	if d == nil {
		return WriteDecision{
			Allowed: true,
			Warning: fmt.Sprintf("no authority configured for domain %q", fieldpath.Domain(path)),
		}
	}
	if d.Exclusive && source != d.CanonicalSource {
		return WriteDecision{
			Reason: fmt.Sprintf("domain %q accepts writes only from %q", d.Name, d.CanonicalSource),
		}
	}
	if !r.IsWriteAllowed(source, d) {
		reason := fmt.Sprintf("source %q may not write domain %q", source, d.Name)
		if source == model.SourceUser {
			reason = fmt.Sprintf("domain %q does not accept operator overrides", d.Name)
		}
		return WriteDecision{Reason: reason}
	}
	return WriteDecision{
		Allowed:     true,
		IsCanonical: source == d.CanonicalSource,
	}
}
