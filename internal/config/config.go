// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quantlab-go/internal/backtest"
)

// App captures process-wide runtime settings such as name, metrics address,
// and logging level.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// AgentParams groups the tunable knobs shared by agent constructors.
type AgentParams struct {
	Lookback       int     `yaml:"lookback"`
	EntryThreshold float64 `yaml:"entry_threshold"`
	ExitThreshold  float64 `yaml:"exit_threshold"`
	ShortPeriod    int     `yaml:"short_period"`
	LongPeriod     int     `yaml:"long_period"`
	RSIPeriod      int     `yaml:"rsi_period"`
	MinCorrelation float64 `yaml:"min_correlation"`
	MinHalfLife    float64 `yaml:"min_half_life"`
	MaxHalfLife    float64 `yaml:"max_half_life"`
	TargetVol      float64 `yaml:"target_vol"`
	Epsilon        float64 `yaml:"epsilon"`
	LearningRate   float64 `yaml:"learning_rate"`
}

// Agent specifies which single-strategy mode is active along with its
// parameter bundle.
type Agent struct {
	Mode   string      `yaml:"mode"`
	Seed   int64       `yaml:"seed"` // drives exploration randomness; 0 leaves it off
	Params AgentParams `yaml:"params"`
}

// Ensemble configures the aggregation policy and the member modes it runs.
type Ensemble struct {
	Enabled bool     `yaml:"enabled"`
	Policy  string   `yaml:"policy"`
	Members []string `yaml:"members"`
}

// Feed describes where bars come from: a CSV file, the deterministic stub,
// or the live websocket source.
type Feed struct {
	Provider string   `yaml:"provider"`
	Path     string   `yaml:"path"`
	Symbols  []string `yaml:"symbols"`
	Interval string   `yaml:"interval"`
}

// Report configures the results sink.
type Report struct {
	ResultsPath string `yaml:"results_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App             `yaml:"app"`
	Backtest backtest.Config `yaml:"backtest"`
	Agent    Agent           `yaml:"agent"`
	Ensemble Ensemble        `yaml:"ensemble"`
	Feed     Feed            `yaml:"feed"`
	Report   Report          `yaml:"report"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
