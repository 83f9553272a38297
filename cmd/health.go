package main

import (
	"github.com/spf13/cobra"

	"github.com/signalworks/agency-ops/internal/dashboard"
)

var healthCmd = &cobra.Command{
	Use:   "health <entity-id>",
	Short: "Print the account health summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		summary, err := e.Dashboard.Health(cmd.Context(), args[0], 0)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var freshnessCmd = &cobra.Command{
	Use:   "freshness <entity-id>",
	Short: "Score field staleness against the freshness rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		scores, err := e.Dashboard.Freshness(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(scores)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <entity-id>",
	Short: "Print the full dashboard snapshot for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		snap, err := e.Dashboard.Snapshot(cmd.Context(), args[0], dashboard.SnapshotOptions{})
		if err != nil {
			return err
		}
		return printJSON(snap)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd, freshnessCmd, snapshotCmd)
}
