package authority

import "github.com/signalworks/agency-ops/internal/model"

// DefaultRegistry returns the standard domain table for client knowledge
// graphs. Competitive-landscape facts are exclusive to the competitive
// analysis module; everything else accepts its listed producers plus the
// operator.
func DefaultRegistry() *Registry {
	return NewRegistry([]Domain{
		{
			Name:            "identity",
			AllowedSources:  []model.Source{model.SourceUser, model.SourceImport, model.SourceWebsiteAnalysis},
			CanonicalSource: model.SourceUser,
			UserCanOverride: true,
		},
		{
			Name:            "brand",
			AllowedSources:  []model.Source{model.SourceUser, model.SourceWebsiteAnalysis, model.SourcePlanner},
			CanonicalSource: model.SourceWebsiteAnalysis,
			UserCanOverride: true,
		},
		{
			Name: "audience",
			AllowedSources: []model.Source{
				model.SourceUser, model.SourceWebsiteAnalysis,
				model.SourceMarketAnalysis, model.SourcePlanner, model.SourceInferred,
			},
			CanonicalSource: model.SourceMarketAnalysis,
			UserCanOverride: true,
		},
		{
			Name:            "positioning",
			AllowedSources:  []model.Source{model.SourceUser, model.SourcePlanner, model.SourceWebsiteAnalysis},
			CanonicalSource: model.SourcePlanner,
			UserCanOverride: true,
		},
		{
			Name:            "competitive",
			AllowedSources:  []model.Source{model.SourceCompetitiveAnalysis},
			CanonicalSource: model.SourceCompetitiveAnalysis,
			UserCanOverride: true,
			Exclusive:       true,
		},
		{
			// Rankings come from one scoring pipeline; operator edits would
			// desynchronize them from the rest of the competitive set.
			Name:            "competitive.rankings",
			AllowedSources:  []model.Source{model.SourceCompetitiveAnalysis},
			CanonicalSource: model.SourceCompetitiveAnalysis,
			UserCanOverride: false,
			Exclusive:       true,
		},
		{
			Name:            "products",
			AllowedSources:  []model.Source{model.SourceUser, model.SourceWebsiteAnalysis, model.SourceImport},
			CanonicalSource: model.SourceWebsiteAnalysis,
			UserCanOverride: true,
		},
		{
			Name:            "channels",
			AllowedSources:  []model.Source{model.SourceUser, model.SourceMarketAnalysis, model.SourcePlanner},
			CanonicalSource: model.SourceMarketAnalysis,
			UserCanOverride: true,
		},
		{
			Name:            "budget",
			AllowedSources:  []model.Source{model.SourceUser, model.SourceImport},
			CanonicalSource: model.SourceUser,
			UserCanOverride: true,
		},
		{
			Name:            "goals",
			AllowedSources:  []model.Source{model.SourceUser, model.SourcePlanner},
			CanonicalSource: model.SourceUser,
			UserCanOverride: true,
		},
	})
}
