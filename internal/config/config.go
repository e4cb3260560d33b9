// Package config holds the options a search run is configured with,
// loadable from a YAML file with environment-variable overrides for
// secrets and paths.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options carries every knob the search engine recognizes, plus the
// outer-layer settings (store selection, optional collaborators) needed to
// run it end to end.
type Options struct {
	// Offer index load-time filters.
	MaxAgeDays    int     `yaml:"max_age_days"`
	MinSupply     int64   `yaml:"min_supply"`
	MinDemand     int64   `yaml:"min_demand"`
	AvoidItems    []int64 `yaml:"avoid_items"`
	RestrictItems []int64 `yaml:"restrict_items,omitempty"`

	// Cargo fit constraints.
	Credits  float64 `yaml:"credits"`
	Capacity int64   `yaml:"capacity"`
	Limit    int64   `yaml:"limit"`

	// Trade filter.
	MinGainPerTon float64 `yaml:"min_gain_per_ton"`
	MaxGainPerTon float64 `yaml:"max_gain_per_ton"`

	// Hop expander policy.
	Margin      float64 `yaml:"margin"`
	Insurance   float64 `yaml:"insurance"`
	MaxJumpsPer int     `yaml:"max_jumps_per"`
	MaxLyPer    float64 `yaml:"max_ly_per"`
	PadSize     string  `yaml:"pad_size"`
	Planetary   string  `yaml:"planetary"`
	NoPlanet    bool    `yaml:"no_planet"`
	MaxLs       float64 `yaml:"max_ls"`
	AvoidPlaces []int64 `yaml:"avoid_places"`
	Unique      bool    `yaml:"unique"`
	LoopInt     int     `yaml:"loop_interval"`
	BlackMarket bool    `yaml:"black_market"`
	Direct      bool    `yaml:"direct"`
	RestrictTo  []int64 `yaml:"restrict_to,omitempty"`
	GoalSystem  int64   `yaml:"goal_system,omitempty"`
	LsPenalty   float64 `yaml:"ls_penalty"`
	UseExactFit bool    `yaml:"use_exact_fit"`

	// How many hops the caller loops the expander for.
	Hops int `yaml:"hops"`

	// Outer-layer: which OfferSource backs the search.
	Store       string `yaml:"store"` // "sqlite" | "postgres"
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`

	// Outer-layer: optional collaborators, all nil-safe when unset.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	RedisAddr   string `yaml:"redis_addr,omitempty"`
	LiveAddr    string `yaml:"live_addr,omitempty"`

	DebugLevel int `yaml:"debug_level"`
}

// Default returns an Options with sensible defaults for a small-ship,
// low-credit run.
func Default() *Options {
	return &Options{
		MinGainPerTon: 1,
		Credits:       1000,
		Capacity:      100,
		Limit:         100,
		Margin:        0.01,
		MaxJumpsPer:   2,
		MaxLyPer:      20,
		Hops:          2,
		Store:         "sqlite",
		SQLitePath:    "wayfarer.db",
	}
}

// Load reads Options from a YAML file over Default(), so fields the file
// does not mention keep their default values, then applies environment-variable overrides for secrets and
// paths. Env wins over file.
func Load(path string) (*Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			opts.applyEnvOverrides()
			return opts, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	opts.applyEnvOverrides()
	return opts, nil
}

// Save writes Options to path as YAML.
func (o *Options) Save(path string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets secrets/paths come from the environment without
// living in a checked-in YAML file. Existing file values are only
// overridden when the env var is actually set.
func (o *Options) applyEnvOverrides() {
	if v := os.Getenv("WAYFARER_SQLITE_PATH"); v != "" {
		o.SQLitePath = v
	}
	if v := os.Getenv("WAYFARER_POSTGRES_DSN"); v != "" {
		o.PostgresDSN = v
		o.Store = "postgres"
	}
	if v := os.Getenv("WAYFARER_REDIS_ADDR"); v != "" {
		o.RedisAddr = v
	}
	if v := os.Getenv("WAYFARER_METRICS_ADDR"); v != "" {
		o.MetricsAddr = v
	}
}
