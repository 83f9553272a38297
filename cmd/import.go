package main

import (
	"github.com/spf13/cobra"

	"github.com/signalworks/agency-ops/internal/importer"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Bulk-import client facts from a CSV export",
	Long: `Reads a CSV whose header names an entity_id column plus schema field
keys, and canonicalizes each row as import-sourced findings. List fields take
semicolon-separated cells. Unknown columns are rejected per row so typos
surface in the output instead of vanishing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		results, err := importer.New(e.Canon, e.Schema).ImportFile(cmd.Context(), args[0], importDryRun)
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List entities with stored graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		entities, err := e.Store.ListEntities(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(entities)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "judge rows without persisting")
	rootCmd.AddCommand(importCmd, entitiesCmd)
}
