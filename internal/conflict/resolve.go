package conflict

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/signalworks/agency-ops/internal/fieldpath"
	"github.com/signalworks/agency-ops/internal/model"
)

// Rule is one auto-resolution rule: a path pattern and an ordered
// source-priority list (earlier index wins).
type Rule struct {
	Name     string         `yaml:"name"`
	Pattern  string         `yaml:"pattern"`
	Priority []model.Source `yaml:"priority"`
	Disabled bool           `yaml:"disabled,omitempty"`
}

// RuleSet is an ordered list of rules. The first enabled rule whose pattern
// matches the conflicted path decides; later rules never see the conflict.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the stock arbitration table. Rule order is load
// bearing: the first matching rule decides, so domain-specific rules come
// before the catch-all.
func DefaultRules() *RuleSet {
	return &RuleSet{Rules: []Rule{
		{
			Name:    "competitive-module-owns-competitive",
			Pattern: "competitive.*",
			Priority: []model.Source{
				model.SourceCompetitiveAnalysis,
				model.SourceUser,
			},
		},
		{
			Name:    "budget-operator-owned",
			Pattern: "budget.*",
			Priority: []model.Source{
				model.SourceUser,
				model.SourceImport,
			},
		},
		{
			Name:    "api-over-scrape-over-inference",
			Pattern: "*",
			Priority: []model.Source{
				model.SourceUser,
				model.SourceImport,
				model.SourceMarketAnalysis,
				model.SourceWebsiteAnalysis,
				model.SourcePlanner,
				model.SourceInferred,
			},
		},
	}}
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "conflict: read rules %s", path)
	}
	var wrapper struct {
		Resolution RuleSet `yaml:"resolution"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "conflict: parse rules")
	}
	return &wrapper.Resolution, nil
}

// rank returns the priority index of a source in the rule, or -1.
func (r *Rule) rank(s model.Source) int {
	for i, p := range r.Priority {
		if p == s {
			return i
		}
	}
	return -1
}

// AutoResolve applies the first matching enabled rule to the conflict and
// returns a copy with the winner set. If neither side's source appears in
// the matching rule's priority list — or no rule matches — the conflict is
// returned unresolved for manual handling.
func AutoResolve(c model.Conflict, rules *RuleSet) model.Conflict {
	if rules == nil {
		return c
	}
	for _, rule := range rules.Rules {
		if rule.Disabled || !fieldpath.Match(c.FieldPath, rule.Pattern) {
			continue
		}
		curRank := rule.rank(c.Current.Source)
		incRank := rule.rank(c.Incoming.Source)
		if curRank < 0 && incRank < 0 {
			return c
		}

		var winner model.ConflictSide
		switch {
		case curRank < 0:
			winner = c.Incoming
		case incRank < 0:
			winner = c.Current
		case incRank < curRank:
			winner = c.Incoming
		case curRank < incRank:
			winner = c.Current
		default:
			// Same source on both sides: recency breaks the tie.
			winner = *NewerSide(&c)
		}

		c.Resolved = true
		c.Winner = &winner
		c.RuleName = rule.Name
		c.Auto = true
		return c
	}
	return c
}
