package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/signalworks/agency-ops/internal/authority"
	"github.com/signalworks/agency-ops/internal/canonical"
	"github.com/signalworks/agency-ops/internal/conflict"
	"github.com/signalworks/agency-ops/internal/dashboard"
	"github.com/signalworks/agency-ops/internal/freshness"
	"github.com/signalworks/agency-ops/internal/schema"
	"github.com/signalworks/agency-ops/internal/store"
)

// env bundles the wired application services shared by the commands.
type env struct {
	Store     store.Store
	Schema    *schema.Registry
	Authority *authority.Registry
	Canon     *canonical.Canonicalizer
	Freshness freshness.Config
	Rules     *conflict.RuleSet
	Dashboard *dashboard.Service
}

// initEnv opens the configured store and wires the core services. Callers
// own the returned env and must Close it.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	fc, err := loadFreshness()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	rules, err := loadRules()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	reg := schema.Default()
	auth := authority.DefaultRegistry()

	return &env{
		Store:     st,
		Schema:    reg,
		Authority: auth,
		Canon:     canonical.New(st, reg, auth),
		Freshness: fc,
		Rules:     rules,
		Dashboard: dashboard.New(st, reg, fc, rules),
	}, nil
}

// Close releases the store.
func (e *env) Close() {
	_ = e.Store.Close()
}

// openStore picks the persistence backend from config.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres driver")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// loadFreshness loads the freshness rule file, or the built-in defaults when
// no override is configured.
func loadFreshness() (freshness.Config, error) {
	if cfg.Registry.FreshnessRules == "" {
		return freshness.DefaultConfig(), nil
	}
	fc, err := freshness.LoadConfig(cfg.Registry.FreshnessRules)
	if err != nil {
		return freshness.Config{}, eris.Wrap(err, "load freshness rules")
	}
	return fc, nil
}

// loadRules loads the conflict resolution rule file, or the defaults.
func loadRules() (*conflict.RuleSet, error) {
	if cfg.Registry.ResolutionRules == "" {
		return conflict.DefaultRules(), nil
	}
	rules, err := conflict.LoadRules(cfg.Registry.ResolutionRules)
	if err != nil {
		return nil, eris.Wrap(err, "load resolution rules")
	}
	return rules, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
