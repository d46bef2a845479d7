// Package agent contains the strategy implementations that turn bar histories
// into trading signals.
package agent

import (
	"fmt"
	"math/rand"
	"strings"

	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// Agent defines behaviour shared by every strategy implementation.
// Analyze receives an ordered history, most recent bar last, and returns a
// fresh signal; it never mutates the history. Train recalibrates internal
// statistics and may be called zero or more times before Analyze.
type Agent interface {
	Name() string
	Analyze(history []market.Bar) signal.Signal
	Train(history []market.Bar)
}

// Params expresses tunable knobs required by agent constructors.
type Params struct {
	Lookback       int
	EntryThreshold float64
	ExitThreshold  float64
	ShortPeriod    int
	LongPeriod     int
	RSIPeriod      int
	MinCorrelation float64
	MinHalfLife    float64
	MaxHalfLife    float64
	TargetVol      float64
	Epsilon        float64
	LearningRate   float64
}

// Build returns an agent implementation matching the configured mode. The rng
// is only consumed by exploration-based agents; passing a seeded source makes
// their runs reproducible.
func Build(mode string, params Params, rng *rand.Rand) Agent {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "meanrev", "mean_reversion":
		return NewMeanReversion(params.Lookback, params.EntryThreshold, params.ExitThreshold)
	case "momentum":
		return NewMomentum(params.ShortPeriod, params.LongPeriod, params.RSIPeriod)
	case "volmomentum", "vol_momentum":
		return NewVolMomentum(params.ShortPeriod, params.LongPeriod, params.RSIPeriod, params.TargetVol)
	case "pairs", "statarb":
		return NewPairsTrader(PairsParams{
			Lookback:       params.Lookback,
			EntryThreshold: params.EntryThreshold,
			ExitThreshold:  params.ExitThreshold,
			MinCorrelation: params.MinCorrelation,
			MinHalfLife:    params.MinHalfLife,
			MaxHalfLife:    params.MaxHalfLife,
		})
	case "lstm":
		return NewLSTM(params.Lookback)
	case "dqn":
		return NewDQN(params.Epsilon, params.LearningRate, rng)
	default:
		return NewMeanReversion(params.Lookback, params.EntryThreshold, params.ExitThreshold)
	}
}

// holdSignal builds the neutral signal every agent falls back to.
func holdSignal(history []market.Bar, confidence float64, reasoning string) signal.Signal {
	s := signal.Signal{Type: signal.Hold, Confidence: confidence, Reasoning: reasoning}
	if len(history) > 0 {
		last := market.Last(history)
		s.Symbol = last.Symbol
		s.Timestamp = last.Timestamp
		s.Price = last.Close
	}
	return s
}

// insufficient builds the zero-confidence HOLD emitted when a history is
// shorter than an agent's required lookback. Short histories are a normal
// condition, not an error.
func insufficient(history []market.Bar, need int) signal.Signal {
	return holdSignal(history, 0,
		fmt.Sprintf("insufficient history: have %d bars, need %d", len(history), need))
}
