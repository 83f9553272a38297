package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/signalworks/agency-ops/internal/canonical"
	"github.com/signalworks/agency-ops/internal/model"
	"github.com/signalworks/agency-ops/internal/schema"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect and edit a client's knowledge graph",
}

var graphShowCmd = &cobra.Command{
	Use:   "show <entity-id>",
	Short: "Print the graph as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := e.Store.LoadGraph(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if g == nil {
			return eris.Errorf("no graph for %s", args[0])
		}
		return printJSON(g)
	},
}

var graphSetForce bool

var graphSetCmd = &cobra.Command{
	Use:   "set <entity-id> <field-key> <value>",
	Short: "Write a field as the operator",
	Long: `Writes one field through the canonicalization gates as the human
operator. The value lands confirmed. List fields take semicolon-separated
values; number fields are parsed as numbers. Use --force to override a
locked or confirmed field.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.Canon.Canonicalize(cmd.Context(), args[0], []model.Candidate{{
			Key:        args[1],
			Value:      coerceValue(e.Schema, args[1], args[2]),
			Confidence: 1,
			Evidence:   "operator set",
		}}, canonical.Options{
			Source:         model.SourceUser,
			ForceOverwrite: graphSetForce,
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var graphConfirmCmd = &cobra.Command{
	Use:   "confirm <entity-id> <field-key>",
	Short: "Confirm a proposed field as operator-approved",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return e.Canon.ConfirmField(cmd.Context(), args[0], args[1])
	},
}

var graphLockReason string

var graphLockCmd = &cobra.Command{
	Use:   "lock <entity-id> <field-key>",
	Short: "Lock a field against automated writes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return e.Canon.LockField(cmd.Context(), args[0], args[1], graphLockReason)
	},
}

var graphUnlockCmd = &cobra.Command{
	Use:   "unlock <entity-id> <field-key>",
	Short: "Remove a field lock",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return e.Canon.UnlockField(cmd.Context(), args[0], args[1])
	},
}

var graphAuditLimit int

var graphAuditCmd = &cobra.Command{
	Use:   "audit <entity-id>",
	Short: "Show recent graph writes from the audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.Store.AuditTrail(cmd.Context(), args[0], graphAuditLimit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

var graphVerifyCmd = &cobra.Command{
	Use:   "verify <entity-id> <field-key>",
	Short: "Mark a field as freshly verified",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return e.Canon.MarkVerified(cmd.Context(), args[0], args[1], time.Now().UTC())
	},
}

// coerceValue converts a CLI string to the field's value kind.
func coerceValue(reg *schema.Registry, key, raw string) any {
	def := reg.ByKey(key)
	if def == nil {
		def = reg.ByPath(key)
	}
	if def == nil {
		return raw
	}
	switch def.Kind {
	case schema.KindList:
		parts := strings.Split(raw, ";")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	case schema.KindNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
		return raw
	default:
		return raw
	}
}

func init() {
	graphSetCmd.Flags().BoolVar(&graphSetForce, "force", false, "override locked or confirmed fields")
	graphLockCmd.Flags().StringVar(&graphLockReason, "reason", "", "reason shown when automated writes are skipped")
	graphAuditCmd.Flags().IntVar(&graphAuditLimit, "limit", 20, "maximum audit entries to show")
	graphCmd.AddCommand(graphShowCmd, graphSetCmd, graphConfirmCmd, graphLockCmd, graphUnlockCmd, graphVerifyCmd, graphAuditCmd)
	rootCmd.AddCommand(graphCmd)
}
