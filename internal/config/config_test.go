package config

import (
	"path/filepath"
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := &Config{
		App: App{Name: "quantlab", MetricsAddr: ":9091", LogLevel: "debug"},
		Agent: Agent{
			Mode: "meanrev",
			Seed: 42,
			Params: AgentParams{
				Lookback:       20,
				EntryThreshold: 2.0,
				ExitThreshold:  0.5,
			},
		},
		Ensemble: Ensemble{Enabled: true, Policy: "weighted_average", Members: []string{"meanrev", "momentum"}},
		Feed:     Feed{Provider: "csv", Path: "bars.csv", Symbols: []string{"BTCUSDT"}},
	}
	original.Backtest.InitialCapital = 50_000
	original.Backtest.PositionSize = 0.25
	original.Backtest.MaxPositions = 3

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.App.MetricsAddr != ":9091" || loaded.Agent.Seed != 42 {
		t.Fatalf("round trip lost app/agent fields: %+v", loaded)
	}
	if loaded.Backtest.InitialCapital != 50_000 || loaded.Backtest.MaxPositions != 3 {
		t.Fatalf("round trip lost backtest fields: %+v", loaded.Backtest)
	}
	if len(loaded.Ensemble.Members) != 2 || loaded.Ensemble.Policy != "weighted_average" {
		t.Fatalf("round trip lost ensemble fields: %+v", loaded.Ensemble)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveNil(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "config.yaml"), nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
