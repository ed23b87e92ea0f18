// Package config loads the YAML run configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/eval"
	"github.com/danielpatrickdp/census-maximizer/internal/gate"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

// ErrNoOutcomeSource is returned when neither an outcome server nor an outcome file is set.
var ErrNoOutcomeSource = errors.New("no outcome source configured")

// #region config
// Config is everything a maximizer run needs besides credentials.
type Config struct {
	Nation  string `yaml:"nation"`
	Contact string `yaml:"contact"`

	DBPath     string `yaml:"db_path"`
	JournalDir string `yaml:"journal_dir"`

	OutcomeAddr string `yaml:"outcome_addr"`
	OutcomeFile string `yaml:"outcome_file"`
	CensusTable string `yaml:"census_table"`

	SkipIssues        []int                `yaml:"skip_issues"`
	UnsolvableIssues  []int                `yaml:"unsolvable_issues"`
	CensusAdjustments map[float64][]string `yaml:"census_adjustments"`
	PolicyWeights     map[string]float64   `yaml:"policy_weights"`

	MinScore      float64 `yaml:"min_score"`
	MaxScoreDrift float64 `yaml:"max_score_drift"`

	RateLimit RateLimit `yaml:"rate_limit"`
}

// RateLimit is the API request budget.
type RateLimit struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// DefaultConfig returns the settings used when a key is absent.
func DefaultConfig() Config {
	g := gate.DefaultGateConfig()
	e := eval.DefaultEvalConfig()
	return Config{
		DBPath:        "census-maximizer.db",
		MinScore:      g.MinScore,
		MaxScoreDrift: e.MaxScoreDrift,
		RateLimit:     RateLimit{Requests: 50, WindowSeconds: 30},
	}
}

// #endregion config

// #region load
// Load reads path over the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML config over the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.WindowSeconds <= 0 {
		return cfg, fmt.Errorf("rate_limit must be positive, got %d per %ds", cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
	}
	return cfg, nil
}

// RequireOutcomeSource checks that predictions can be loaded from somewhere.
func (c Config) RequireOutcomeSource() error {
	if c.OutcomeAddr == "" && c.OutcomeFile == "" {
		return ErrNoOutcomeSource
	}
	return nil
}

// #endregion load

// #region derived
// GateConfig builds the decision gate settings. extraUnsolvable is merged
// into the configured deny-list.
func (c Config) GateConfig(extraUnsolvable ...int) gate.GateConfig {
	g := gate.DefaultGateConfig()
	g.SkipIssues = append([]int(nil), c.SkipIssues...)
	g.Unsolvable = append(append([]int(nil), c.UnsolvableIssues...), extraUnsolvable...)
	g.MinScore = c.MinScore
	return g
}

// EvalConfig builds the prediction check thresholds.
func (c Config) EvalConfig() eval.EvalConfig {
	e := eval.DefaultEvalConfig()
	e.MaxScoreDrift = c.MaxScoreDrift
	return e
}

// Table loads the configured census table, or the embedded one.
func (c Config) Table() (*census.Table, error) {
	if c.CensusTable == "" {
		return census.Default()
	}
	return census.LoadTable(c.CensusTable)
}

// Weights builds the default weight model for table and applies the
// configured adjustments.
func (c Config) Weights(table *census.Table) (*weights.Model, error) {
	w, err := weights.Default(table)
	if err != nil {
		return nil, err
	}
	policy := c.PolicyWeights
	if policy == nil {
		policy = map[string]float64{}
	}
	if err := w.Adjust(c.CensusAdjustments, policy); err != nil {
		return nil, fmt.Errorf("census_adjustments: %w", err)
	}
	return w, nil
}

// #endregion derived
