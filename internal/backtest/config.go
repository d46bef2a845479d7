// Package backtest drives an agent over historical bars, manages the trade
// lifecycle under funding and risk limits, and rolls the outcome up into
// standardized performance metrics.
package backtest

import (
	"fmt"
)

// Config is the funding and risk configuration for one run. It is validated
// once at engine construction and immutable afterwards.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital"`
	Commission     float64 `yaml:"commission"`
	Slippage       float64 `yaml:"slippage"`
	PositionSize   float64 `yaml:"position_size"` // fraction of capital per trade, (0,1]
	MaxPositions   int     `yaml:"max_positions"`
	StopLossPct    float64 `yaml:"stop_loss_pct"`   // 0 disables
	TakeProfitPct  float64 `yaml:"take_profit_pct"` // 0 disables
	TrainWindow    int     `yaml:"train_window"`    // leading bars handed to Train, excluded from simulation
}

// DefaultConfig returns a conservative baseline configuration.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 100_000,
		Commission:     0.001,
		Slippage:       0.0005,
		PositionSize:   0.1,
		MaxPositions:   1,
	}
}

// Validate fails fast on configuration errors before any run starts.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.Commission < 0 {
		return fmt.Errorf("commission must not be negative, got %v", c.Commission)
	}
	if c.Slippage < 0 {
		return fmt.Errorf("slippage must not be negative, got %v", c.Slippage)
	}
	if c.PositionSize <= 0 || c.PositionSize > 1 {
		return fmt.Errorf("position size must be in (0,1], got %v", c.PositionSize)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("max positions must be at least 1, got %d", c.MaxPositions)
	}
	if c.StopLossPct < 0 || c.TakeProfitPct < 0 {
		return fmt.Errorf("stop loss and take profit percentages must not be negative")
	}
	if c.TrainWindow < 0 {
		return fmt.Errorf("train window must not be negative, got %d", c.TrainWindow)
	}
	return nil
}
