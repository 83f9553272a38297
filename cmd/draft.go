package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/drafting"
	"github.com/signalworks/agency-ops/internal/resilience"
	"github.com/signalworks/agency-ops/pkg/anthropic"
	"github.com/signalworks/agency-ops/pkg/notion"
)

var (
	draftWorkflow string
	draftDryRun   bool
	draftPublish  bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft strategy proposals and deliverables with the planning module",
}

var draftPlanCmd = &cobra.Command{
	Use:   "plan <entity-id>",
	Short: "Propose values for a workflow's open fields",
	Long: `Assembles the client's facts into a planning prompt, asks the model
for field proposals, and runs them through the canonicalization gates as
planner findings. Rejected and skipped proposals are reported alongside
what was written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		d, err := newDrafter(e)
		if err != nil {
			return err
		}

		dryRun := draftDryRun || cfg.Drafting.DryRun
		res, err := d.Plan(cmd.Context(), args[0], draftWorkflow, dryRun)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var draftBriefCmd = &cobra.Command{
	Use:   "brief <entity-id>",
	Short: "Draft a prose brief, optionally publishing it to Notion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		d, err := newDrafter(e)
		if err != nil {
			return err
		}

		draft, err := d.Brief(cmd.Context(), args[0], draftWorkflow)
		if err != nil {
			return err
		}

		if !draftPublish {
			return printJSON(draft)
		}

		if cfg.Notion.Token == "" || cfg.Notion.BriefDB == "" {
			return eris.New("notion.token and notion.brief_db are required for --publish")
		}

		report, err := e.Dashboard.Blockers(cmd.Context(), args[0], draftWorkflow)
		if err != nil {
			return err
		}
		summary, err := e.Dashboard.Health(cmd.Context(), args[0], 0)
		if err != nil {
			return err
		}

		nc := notion.NewClient(cfg.Notion.Token)
		pageID, err := notion.PublishBrief(cmd.Context(), nc, cfg.Notion.BriefDB, notion.Brief{
			EntityID:     args[0],
			Title:        draft.Title,
			Body:         draft.Body,
			Workflow:     draftWorkflow,
			Completeness: report.Completeness,
			Health:       summary.Overall,
		})
		if err != nil {
			return err
		}
		zap.L().Info("brief published",
			zap.String("entity_id", args[0]),
			zap.String("page_id", pageID))
		return printJSON(map[string]string{"page_id": pageID})
	},
}

// newDrafter wires a Drafter from config.
func newDrafter(e *env) (*drafting.Drafter, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic.key is required for drafting")
	}
	opts := []drafting.DrafterOption{
		drafting.WithModel(cfg.Anthropic.Model),
		drafting.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)),
	}
	if cfg.Drafting.MaxRetries > 0 {
		p := resilience.DefaultPolicy()
		p.Attempts = cfg.Drafting.MaxRetries
		opts = append(opts, drafting.WithPolicy(p))
	}
	return drafting.NewDrafter(
		anthropic.NewClient(cfg.Anthropic.Key, anthropic.WithRateLimit(cfg.Anthropic.RateLimit)),
		e.Canon, e.Store, e.Schema,
		opts...,
	), nil
}

func init() {
	draftCmd.PersistentFlags().StringVar(&draftWorkflow, "workflow", "strategy", "workflow to draft for")
	draftPlanCmd.Flags().BoolVar(&draftDryRun, "dry-run", false, "judge proposals without persisting")
	draftBriefCmd.Flags().BoolVar(&draftPublish, "publish", false, "publish the brief to the configured Notion database")
	draftCmd.AddCommand(draftPlanCmd, draftBriefCmd)
	rootCmd.AddCommand(draftCmd)
}
