package agent

import (
	"math"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// VolMomentum is the momentum agent with its conviction scaled down when
// realized volatility runs above target, so noisy regimes produce weaker
// signals instead of more of them.
type VolMomentum struct {
	inner     *Momentum
	targetVol float64
}

// NewVolMomentum builds a volatility-adjusted momentum agent. targetVol is
// the annualized volatility at which confidence remains unscaled; 0 defaults
// to 0.20.
func NewVolMomentum(shortPeriod, longPeriod, rsiPeriod int, targetVol float64) *VolMomentum {
	if targetVol <= 0 {
		targetVol = 0.20
	}
	return &VolMomentum{inner: NewMomentum(shortPeriod, longPeriod, rsiPeriod), targetVol: targetVol}
}

// Name returns the identifier used in logs and rankings.
func (v *VolMomentum) Name() string { return "VolMomentum" }

// Train is a no-op, matching the wrapped momentum agent.
func (v *VolMomentum) Train(history []market.Bar) {}

// Analyze runs the momentum vote and rescales confidence by target over
// realized volatility, capped at 1.
func (v *VolMomentum) Analyze(history []market.Bar) signal.Signal {
	s := v.inner.Analyze(history)
	if s.Type == signal.Hold {
		return s
	}

	vol := realizedVol(market.Closes(market.Tail(history, v.inner.lookback())))
	adj := 1.0
	if vol > 0 {
		adj = math.Min(v.targetVol/vol, 1.0)
	}
	s.Confidence *= adj
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata["realized_vol"] = vol
	s.Metadata["vol_adjust"] = adj
	return s
}

// realizedVol annualizes the standard deviation of simple bar-to-bar returns
// assuming daily bars.
func realizedVol(closes []float64) float64 {
	if len(closes) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns = append(returns, closes[i]/closes[i-1]-1)
		}
	}
	return indicators.StdDev(returns) * math.Sqrt(252)
}
