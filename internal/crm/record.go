// Package crm maintains the golden client record for each agency account
// and keeps the CRM system of record in step with the knowledge graph.
package crm

import (
	"github.com/signalworks/agency-ops/internal/model"
)

// ClientRecord is the flattened CRM view of one agency client. It carries
// only the fields that map onto CRM Account records; the full graph stays
// in the store.
type ClientRecord struct {
	SalesforceID  string  `json:"salesforce_id,omitempty"`
	Name          string  `json:"name"`
	Website       string  `json:"website,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	Description   string  `json:"description,omitempty"`
	PrimaryICP    string  `json:"primary_icp,omitempty"`
	PrimaryGoal   string  `json:"primary_goal,omitempty"`
	MonthlyBudget float64 `json:"monthly_budget,omitempty"`
	YearFounded   int     `json:"year_founded,omitempty"`
}

// MergeFromGraph updates a ClientRecord from graph fields. It applies
// status-priority merge: confirmed fields always overwrite, proposed fields
// only fill gaps or replace when their confidence clears the bar.
func MergeFromGraph(record *ClientRecord, g *model.Graph) {
	if g == nil {
		return
	}
	for path, f := range g.Fields {
		if f == nil || f.Value == nil {
			continue
		}
		applyField(record, path, f)
	}
}

// applyField maps a graph field to the corresponding ClientRecord field.
func applyField(r *ClientRecord, path string, f *model.Field) {
	s, _ := f.Value.(string)

	switch path {
	case "identity.companyName":
		if r.Name == "" || wins(f, 0.7) {
			r.Name = s
		}
	case "identity.websiteURL":
		if r.Website == "" || wins(f, 0.7) {
			r.Website = s
		}
	case "identity.industry":
		if r.Industry == "" || wins(f, 0.7) {
			r.Industry = s
		}
	case "identity.yearFounded":
		if n := toInt(f.Value); n > 0 && (r.YearFounded == 0 || wins(f, 0.7)) {
			r.YearFounded = n
		}
	case "positioning.statement":
		if r.Description == "" || wins(f, 0.6) {
			r.Description = s
		}
	case "audience.icpPrimary":
		if r.PrimaryICP == "" || wins(f, 0.6) {
			r.PrimaryICP = s
		}
	case "goals.primary":
		if r.PrimaryGoal == "" || wins(f, 0.6) {
			r.PrimaryGoal = s
		}
	case "budget.monthly":
		if n := toFloat64(f.Value); n > 0 {
			r.MonthlyBudget = n
		}
	}
}

// wins reports whether a field is strong enough to overwrite an existing
// record value. Confirmed fields always win; proposed fields need to clear
// the confidence threshold.
func wins(f *model.Field, threshold float64) bool {
	return f.Status == model.FieldConfirmed || f.Confidence > threshold
}

// SFFields returns the record as Salesforce Account field values. Agency
// fields with no standard Account counterpart use the managed-package
// custom fields.
func (r *ClientRecord) SFFields() map[string]any {
	fields := make(map[string]any)
	if r.Name != "" {
		fields["Name"] = r.Name
	}
	if r.Website != "" {
		fields["Website"] = r.Website
	}
	if r.Industry != "" {
		fields["Industry"] = r.Industry
	}
	if r.Description != "" {
		fields["Description"] = r.Description
	}
	if r.PrimaryICP != "" {
		fields["Primary_ICP__c"] = r.PrimaryICP
	}
	if r.PrimaryGoal != "" {
		fields["Primary_Goal__c"] = r.PrimaryGoal
	}
	if r.MonthlyBudget > 0 {
		fields["Monthly_Budget__c"] = r.MonthlyBudget
	}
	if r.YearFounded > 0 {
		fields["Year_Founded__c"] = r.YearFounded
	}
	return fields
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
