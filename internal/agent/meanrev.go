package agent

import (
	"fmt"
	"math"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// MeanReversion trades z-score deviations of the latest close from its
// trailing rolling window: buy stretched-down prices, sell stretched-up ones.
type MeanReversion struct {
	lookback       int
	entryThreshold float64
	exitThreshold  float64

	// calibration baseline, refreshed by Train
	baseMean float64
	baseStd  float64
}

// NewMeanReversion builds a mean reversion agent with sane defaults for
// non-positive parameters.
func NewMeanReversion(lookback int, entryThreshold, exitThreshold float64) *MeanReversion {
	if lookback <= 0 {
		lookback = 20
	}
	if entryThreshold <= 0 {
		entryThreshold = 2.0
	}
	if exitThreshold <= 0 {
		exitThreshold = 0.5
	}
	return &MeanReversion{lookback: lookback, entryThreshold: entryThreshold, exitThreshold: exitThreshold}
}

// Name returns the identifier used in logs and rankings.
func (m *MeanReversion) Name() string { return "MeanReversion" }

// Train records baseline mean and deviation statistics over the full history.
func (m *MeanReversion) Train(history []market.Bar) {
	closes := market.Closes(history)
	m.baseMean = indicators.Mean(closes)
	m.baseStd = indicators.StdDev(closes)
}

// Analyze scores the latest close against the trailing lookback window.
func (m *MeanReversion) Analyze(history []market.Bar) signal.Signal {
	if len(history) < m.lookback {
		return insufficient(history, m.lookback)
	}

	closes := market.Closes(market.Tail(history, m.lookback))
	last := market.Last(history)
	z := indicators.ZScore(last.Close, closes)

	var s signal.Signal
	switch {
	case z <= -m.entryThreshold:
		s = signal.Signal{
			Type:       signal.Buy,
			Confidence: math.Min(math.Abs(z)/m.entryThreshold, 1.0),
			Reasoning:  fmt.Sprintf("price stretched %.2f sigma below its %d-bar mean", -z, m.lookback),
		}
	case z >= m.entryThreshold:
		s = signal.Signal{
			Type:       signal.Sell,
			Confidence: math.Min(math.Abs(z)/m.entryThreshold, 1.0),
			Reasoning:  fmt.Sprintf("price stretched %.2f sigma above its %d-bar mean", z, m.lookback),
		}
	case math.Abs(z) <= m.exitThreshold:
		s = signal.Signal{Type: signal.Hold, Confidence: 0.3, Reasoning: "reverted"}
	default:
		s = signal.Signal{Type: signal.Hold, Confidence: 0.2, Reasoning: "neutral"}
	}

	s.Symbol = last.Symbol
	s.Timestamp = last.Timestamp
	s.Price = last.Close
	s.Metadata = map[string]any{"zscore": z}
	return s
}
