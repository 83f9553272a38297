package freshness

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/signalworks/agency-ops/internal/fieldpath"
)

// PatternThresholds binds a path pattern (exact or "prefix.*") to a
// threshold set.
type PatternThresholds struct {
	Pattern    string     `yaml:"pattern"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Config is the ordered threshold table. Lookup order: exact pattern match,
// then wildcard pattern match, then Default.
type Config struct {
	Rules   []PatternThresholds `yaml:"rules"`
	Default Thresholds          `yaml:"default"`
}

// DefaultConfig returns the standard decay windows. Competitive facts churn
// fastest; identity facts barely move.
func DefaultConfig() Config {
	return Config{
		Rules: []PatternThresholds{
			{Pattern: "competitive.*", Thresholds: Thresholds{FreshDays: 14, StaleDays: 45, ExpiredDays: 90}},
			{Pattern: "channels.bestPerforming", Thresholds: Thresholds{FreshDays: 30, StaleDays: 60, ExpiredDays: 120}},
			{Pattern: "channels.*", Thresholds: Thresholds{FreshDays: 45, StaleDays: 120, ExpiredDays: 240}},
			{Pattern: "budget.*", Thresholds: Thresholds{FreshDays: 30, StaleDays: 90, ExpiredDays: 180}},
			{Pattern: "audience.*", Thresholds: Thresholds{FreshDays: 90, StaleDays: 180, ExpiredDays: 365}},
			{Pattern: "goals.*", Thresholds: Thresholds{FreshDays: 90, StaleDays: 180, ExpiredDays: 365}},
			{Pattern: "identity.*", Thresholds: Thresholds{FreshDays: 365, StaleDays: 730, ExpiredDays: 1095}},
		},
		Default: Thresholds{FreshDays: 60, StaleDays: 180, ExpiredDays: 365},
	}
}

// ThresholdsFor resolves the thresholds for a field path: exact rule first,
// then wildcard rules in order, then the default.
func (c Config) ThresholdsFor(path string) Thresholds {
	for _, r := range c.Rules {
		if r.Pattern == path {
			return r.Thresholds
		}
	}
	for _, r := range c.Rules {
		if fieldpath.Match(path, r.Pattern) {
			return r.Thresholds
		}
	}
	return c.Default
}

// LoadConfig reads a threshold table from a YAML file. Rules missing any
// boundary inherit it from the default set; the default set in turn inherits
// missing boundaries from the standard windows, so no threshold is ever zero.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "freshness: read config %s", path)
	}

	var wrapper struct {
		Freshness Config `yaml:"freshness"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Config{}, eris.Wrap(err, "freshness: parse config")
	}

	cfg := wrapper.Freshness
	std := DefaultConfig().Default
	if cfg.Default.FreshDays == 0 {
		cfg.Default.FreshDays = std.FreshDays
	}
	if cfg.Default.StaleDays == 0 {
		cfg.Default.StaleDays = std.StaleDays
	}
	if cfg.Default.ExpiredDays == 0 {
		cfg.Default.ExpiredDays = std.ExpiredDays
	}
	for i, r := range cfg.Rules {
		if r.Thresholds.FreshDays == 0 {
			cfg.Rules[i].Thresholds.FreshDays = cfg.Default.FreshDays
		}
		if r.Thresholds.StaleDays == 0 {
			cfg.Rules[i].Thresholds.StaleDays = cfg.Default.StaleDays
		}
		if r.Thresholds.ExpiredDays == 0 {
			cfg.Rules[i].Thresholds.ExpiredDays = cfg.Default.ExpiredDays
		}
	}
	return cfg, nil
}
