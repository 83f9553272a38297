package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/signalworks/agency-ops/internal/canonical"
	"github.com/signalworks/agency-ops/internal/model"
)

var (
	canonFile     string
	canonSource   string
	canonRunID    string
	canonForce    bool
	canonDryRun   bool
	canonBaseline bool
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize <entity-id>",
	Short: "Run a findings batch through the canonicalization gates",
	Long: `Reads a JSON array of findings and judges each one against the graph:
schema validation, proposer authority, confirmed-field protection, quality
gates, and confidence ordering. Accepted values are written with provenance;
everything else is reported as skipped or rejected.

Findings format:
  [{"key": "audience_icp_primary", "value": "...", "confidence": 0.8, "evidence": "..."}]

Use --file - to read findings from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		findings, err := readFindings(canonFile)
		if err != nil {
			return err
		}

		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.Canon.Canonicalize(cmd.Context(), args[0], findings, canonical.Options{
			Source:         model.Source(canonSource),
			RunID:          canonRunID,
			ForceOverwrite: canonForce,
			DryRun:         canonDryRun,
			Baseline:       canonBaseline,
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

// readFindings decodes a findings JSON file, or stdin when path is "-".
func readFindings(path string) ([]model.Candidate, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open findings %s", path)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	var findings []model.Candidate
	if err := json.NewDecoder(r).Decode(&findings); err != nil {
		return nil, eris.Wrap(err, "decode findings")
	}
	return findings, nil
}

func init() {
	f := canonicalizeCmd.Flags()
	f.StringVar(&canonFile, "file", "-", "findings JSON file (- for stdin)")
	f.StringVar(&canonSource, "source", string(model.SourceWebsiteAnalysis), "producer submitting the batch")
	f.StringVar(&canonRunID, "run-id", "", "run identifier recorded in provenance")
	f.BoolVar(&canonForce, "force", false, "override confirmed/locked fields (user source only)")
	f.BoolVar(&canonDryRun, "dry-run", false, "judge the batch without persisting")
	f.BoolVar(&canonBaseline, "baseline", false, "relax audience specificity for local-business extraction")
	rootCmd.AddCommand(canonicalizeCmd)
}
