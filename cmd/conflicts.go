package main

import (
	"github.com/spf13/cobra"

	"github.com/signalworks/agency-ops/internal/model"
)

var (
	conflictsFile   string
	conflictsSource string
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <entity-id>",
	Short: "Detect conflicts between a findings batch and the graph",
	Long: `Compares a findings batch against standing field values without
writing anything. Each conflict is auto-resolved against the resolution
rules; unresolved ones need an operator decision.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		findings, err := readFindings(conflictsFile)
		if err != nil {
			return err
		}

		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		conflicts, err := e.Dashboard.PendingConflicts(cmd.Context(), args[0], findings, model.Source(conflictsSource))
		if err != nil {
			return err
		}
		return printJSON(conflicts)
	},
}

func init() {
	f := conflictsCmd.Flags()
	f.StringVar(&conflictsFile, "file", "-", "findings JSON file (- for stdin)")
	f.StringVar(&conflictsSource, "source", string(model.SourceWebsiteAnalysis), "producer of the batch")
	rootCmd.AddCommand(conflictsCmd)
}
