package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalworks/agency-ops/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agency-ops",
	Short: "Client context graph and campaign operations toolkit",
	Long: "Maintains the per-client knowledge graph: canonicalizes findings from " +
		"analysis modules, scores coverage and health, drafts strategy via the " +
		"planning module, and syncs Salesforce and Notion.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
