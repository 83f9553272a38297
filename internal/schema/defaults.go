package schema

import (
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/quality"
)

// Workflow names used across the schema and coverage evaluators.
const (
	WorkflowStrategy      = "strategy"
	WorkflowCampaignBrief = "campaign_brief"
	WorkflowContentPlan   = "content_plan"
)

// Default returns the locked field registry for client knowledge graphs.
func Default() *Registry {
	user := model.SourceUser
	site := model.SourceWebsiteAnalysis
	market := model.SourceMarketAnalysis
	planner := model.SourcePlanner
	comp := model.SourceCompetitiveAnalysis
	imp := model.SourceImport
	inferred := model.SourceInferred

	return NewRegistry([]FieldDefinition{
		// identity
		{
			Key: "company_name", Path: "identity.companyName", Kind: KindText,
			Workflows: []string{WorkflowStrategy, WorkflowCampaignBrief},
			Proposers: []model.Source{user, imp, site},
			MinLength: 2, MaxLength: 120,
			RejectPatterns: []string{`(?i)^(home|welcome|index)$`},
		},
		{
			Key: "website_url", Path: "identity.websiteURL", Kind: KindText,
			Proposers: []model.Source{user, imp, site},
			MinLength: 4, MaxLength: 300,
		},
		{
			Key: "industry", Path: "identity.industry", Kind: KindText,
			Workflows: []string{WorkflowStrategy},
			Proposers: []model.Source{user, imp, site, market},
			MaxLength: 120,
		},
		{
			Key: "year_founded", Path: "identity.yearFounded", Kind: KindNumber,
			Proposers: []model.Source{user, imp, site},
		},

		// brand
		{
			Key: "brand_voice", Path: "brand.voice", Kind: KindText,
			Workflows: []string{WorkflowContentPlan},
			Proposers: []model.Source{user, site, planner},
			RejectPatterns: []string{`(?i)lorem ipsum`},
		},
		{
			Key: "brand_values", Path: "brand.values", Kind: KindList,
			Proposers: []model.Source{user, site, planner},
		},
		{
			Key: "brand_story", Path: "brand.story", Kind: KindText,
			Proposers: []model.Source{user, site, planner},
			MinLength: 20,
		},

		// audience
		{
			Key: "audience_icp_primary", Path: "audience.icpPrimary", Kind: KindText,
			Workflows: []string{WorkflowStrategy, WorkflowCampaignBrief},
			Proposers: []model.Source{user, site, market, inferred},
			Check:     quality.CheckAudience,
		},
		{
			Key: "audience_icp_secondary", Path: "audience.icpSecondary", Kind: KindText,
			Proposers: []model.Source{user, site, market, inferred},
			Check:     quality.CheckAudience,
		},
		{
			Key: "audience_pain_points", Path: "audience.painPoints", Kind: KindList,
			Workflows: []string{WorkflowCampaignBrief},
			Proposers: []model.Source{user, site, market, planner, inferred},
		},
		{
			Key: "audience_geography", Path: "audience.geography", Kind: KindText,
			Proposers: []model.Source{user, market, imp},
			MaxLength: 200,
		},

		// positioning
		{
			Key: "positioning", Path: "positioning.statement", Kind: KindText,
			Workflows: []string{WorkflowStrategy, WorkflowCampaignBrief},
			Proposers: []model.Source{user, planner, site},
			Check:     quality.CheckPositioning,
		},
		{
			Key: "value_proposition", Path: "positioning.valueProposition", Kind: KindText,
			Workflows: []string{WorkflowStrategy},
			Proposers: []model.Source{user, planner, site},
			MinLength: 10,
		},
		{
			Key: "differentiators", Path: "positioning.differentiators", Kind: KindList,
			Workflows: []string{WorkflowStrategy},
			Proposers: []model.Source{user, planner, site},
		},

		// competitive — exclusive to the competitive analysis module
		{
			Key: "top_competitors", Path: "competitive.topCompetitors", Kind: KindList,
			Workflows: []string{WorkflowStrategy},
			Proposers: []model.Source{comp},
		},
		{
			Key: "competitive_advantages", Path: "competitive.advantages", Kind: KindList,
			Proposers: []model.Source{comp},
		},
		{
			Key: "competitive_rankings", Path: "competitive.rankings", Kind: KindList,
			Proposers: []model.Source{comp},
		},
		{
			Key: "market_position", Path: "competitive.marketPosition", Kind: KindText,
			Proposers: []model.Source{comp},
		},

		// products
		{
			Key: "primary_products", Path: "products.primary", Kind: KindList,
			Workflows: []string{WorkflowCampaignBrief},
			Proposers: []model.Source{user, site, imp},
		},
		{
			Key: "hero_products", Path: "products.hero", Kind: KindList,
			Proposers: []model.Source{user, site, imp},
		},
		{
			Key: "pricing_model", Path: "products.pricingModel", Kind: KindText,
			Proposers: []model.Source{user, site, imp},
			MaxLength: 300,
		},

		// channels
		{
			Key: "active_channels", Path: "channels.active", Kind: KindList,
			Workflows: []string{WorkflowContentPlan},
			Proposers: []model.Source{user, market, planner},
		},
		{
			Key: "best_channel", Path: "channels.bestPerforming", Kind: KindText,
			Proposers: []model.Source{user, market},
			MaxLength: 120,
		},
		{
			Key: "content_cadence", Path: "channels.contentCadence", Kind: KindText,
			Workflows: []string{WorkflowContentPlan},
			Proposers: []model.Source{user, planner},
			MaxLength: 200,
		},

		// budget
		{
			Key: "monthly_budget", Path: "budget.monthly", Kind: KindNumber,
			Workflows: []string{WorkflowCampaignBrief},
			Proposers: []model.Source{user, imp},
		},
		{
			Key: "budget_flexibility", Path: "budget.flexibility", Kind: KindText,
			Proposers: []model.Source{user},
			MaxLength: 300,
		},

		// goals
		{
			Key: "primary_goal", Path: "goals.primary", Kind: KindText,
			Workflows: []string{WorkflowStrategy, WorkflowCampaignBrief},
			Proposers: []model.Source{user, planner},
		},
		{
			Key: "kpis", Path: "goals.kpis", Kind: KindList,
			Workflows: []string{WorkflowContentPlan},
			Proposers: []model.Source{user, planner},
		},
		{
			Key: "goal_timeline", Path: "goals.timeline", Kind: KindText,
			Proposers: []model.Source{user, planner},
			MaxLength: 200,
		},
	})
}
