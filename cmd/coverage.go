package main

import (
	"github.com/spf13/cobra"
)

var coverageWorkflow string

var coverageCmd = &cobra.Command{
	Use:   "coverage <entity-id>",
	Short: "Score workflow readiness and list blockers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.Dashboard.Blockers(cmd.Context(), args[0], coverageWorkflow)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageWorkflow, "workflow", "strategy", "workflow to score (strategy, campaign_brief, content_plan)")
	rootCmd.AddCommand(coverageCmd)
}
