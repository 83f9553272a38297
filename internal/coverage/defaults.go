package coverage

import (
	"github.com/signalworks/agency-ops/internal/fieldpath"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/schema"
)

// RequiredKey is the flat-audit shape: a primary key with acceptable
// alternatives. It degenerates to a one-of-n requirement rule.
type RequiredKey struct {
	Primary      string   `json:"primary" yaml:"primary"`
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// AuditKeys runs the flat required-key audit: each key is satisfied by its
// primary path or any alternative, and each weighs the same.
func (e *Evaluator) AuditKeys(entityID string, g *model.Graph, keys []RequiredKey) *Report {
	domains := make([]WeightedDomain, 0, len(keys))
	for _, k := range keys {
		domains = append(domains, WeightedDomain{
			Name:   k.Primary,
			Weight: 1,
			Rule: RequirementRule{
				Kind: RequireAnyOf,
				Keys: append([]string{k.Primary}, k.Alternatives...),
			},
		})
	}
	return e.Evaluate(entityID, g, "", domains)
}

// domainWeights reflects how much each graph partition matters to workflow
// readiness. Competitive data is the one hard blocker: strategy work built
// on a stale or absent competitive picture gets rewritten.
var domainWeights = map[string]float64{
	"identity":    8,
	"positioning": 10,
	"audience":    9,
	"competitive": 7,
	"brand":       6,
	"products":    5,
	"channels":    5,
	"budget":      6,
	"goals":       8,
}

const defaultDomainWeight = 4

// ForWorkflow derives the weighted requirement set for a workflow from the
// field registry: every field the workflow requires, grouped by domain.
func ForWorkflow(reg *schema.Registry, workflow string) []WeightedDomain {
	grouped := make(map[string][]string)
	var order []string
	for _, def := range reg.ForWorkflow(workflow) {
		domain := fieldpath.Domain(def.Path)
		if _, seen := grouped[domain]; !seen {
			order = append(order, domain)
		}
		grouped[domain] = append(grouped[domain], def.Key)
	}

	out := make([]WeightedDomain, 0, len(order))
	for _, domain := range order {
		weight, ok := domainWeights[domain]
		if !ok {
			weight = defaultDomainWeight
		}
		out = append(out, WeightedDomain{
			Name:        domain,
			Weight:      weight,
			Rule:        RequirementRule{Kind: RequireAll, Keys: grouped[domain]},
			HardBlocker: domain == "competitive",
		})
	}
	return out
}
