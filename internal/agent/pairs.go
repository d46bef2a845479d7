package agent

import (
	"fmt"
	"math"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// PairsParams tunes the statistical-arbitrage screen and trading thresholds.
type PairsParams struct {
	Lookback       int
	EntryThreshold float64
	ExitThreshold  float64
	MinCorrelation float64
	MinHalfLife    float64
	MaxHalfLife    float64
}

// PairStats describes a screened pair that passed every filter.
type PairStats struct {
	Correlation float64
	HedgeRatio  float64
	Intercept   float64
	HalfLife    float64
	SpreadMean  float64
	SpreadStd   float64
}

// ScreenPair runs the stat-arb admission pipeline on two aligned price
// series: correlation filter, OLS hedge ratio, AR(1) mean-reversion test on
// the spread, and half-life bounds. A nil result with a reason string is the
// normal rejection path, not an error.
func ScreenPair(a, b []float64, p PairsParams) (*PairStats, string) {
	if len(a) != len(b) || len(a) < 3 {
		return nil, "series too short or misaligned"
	}

	corr := indicators.Correlation(a, b)
	if math.Abs(corr) < p.MinCorrelation {
		return nil, fmt.Sprintf("correlation %.3f below minimum %.3f", corr, p.MinCorrelation)
	}

	alpha, beta, ok := indicators.OLS(a, b)
	if !ok {
		return nil, "degenerate hedge regression"
	}

	spread := make([]float64, len(a))
	for i := range a {
		spread[i] = a[i] - (alpha + beta*b[i])
	}

	// AR(1): regress the spread's first difference on its lag. A
	// non-negative coefficient means deviations do not decay.
	diff := make([]float64, len(spread)-1)
	lag := make([]float64, len(spread)-1)
	for i := 1; i < len(spread); i++ {
		diff[i-1] = spread[i] - spread[i-1]
		lag[i-1] = spread[i-1]
	}
	_, arCoef, ok := indicators.OLS(diff, lag)
	if !ok {
		return nil, "degenerate stationarity regression"
	}
	if arCoef >= 0 {
		return nil, fmt.Sprintf("spread not mean reverting (ar1 %.4f)", arCoef)
	}

	halfLife := -math.Ln2 / arCoef
	if halfLife < p.MinHalfLife || halfLife > p.MaxHalfLife {
		return nil, fmt.Sprintf("half-life %.1f outside [%.1f, %.1f]", halfLife, p.MinHalfLife, p.MaxHalfLife)
	}

	return &PairStats{
		Correlation: corr,
		HedgeRatio:  beta,
		Intercept:   alpha,
		HalfLife:    halfLife,
		SpreadMean:  indicators.Mean(spread),
		SpreadStd:   indicators.StdDev(spread),
	}, ""
}

// PairsTrader trades the spread of a calibrated cointegrated pair with the
// same z-score entry/exit policy as single-asset mean reversion. The peer leg
// is supplied out of band; Train screens the pair against it.
type PairsTrader struct {
	params PairsParams
	peer   []market.Bar
	pair   *PairStats
	reject string
}

// NewPairsTrader builds a pairs agent with defaults for zero-valued knobs.
func NewPairsTrader(p PairsParams) *PairsTrader {
	if p.Lookback <= 0 {
		p.Lookback = 60
	}
	if p.EntryThreshold <= 0 {
		p.EntryThreshold = 2.0
	}
	if p.ExitThreshold <= 0 {
		p.ExitThreshold = 0.5
	}
	if p.MinCorrelation <= 0 {
		p.MinCorrelation = 0.8
	}
	if p.MinHalfLife <= 0 {
		p.MinHalfLife = 1
	}
	if p.MaxHalfLife <= 0 {
		p.MaxHalfLife = 42
	}
	return &PairsTrader{params: p}
}

// Name returns the identifier used in logs and rankings.
func (p *PairsTrader) Name() string { return "PairsTrader" }

// SetPeer installs the second leg's bar history. Calibration is invalidated
// until the next Train call.
func (p *PairsTrader) SetPeer(bars []market.Bar) {
	p.peer = bars
	p.pair = nil
	p.reject = ""
}

// Pair exposes the calibrated pair statistics, nil before a successful Train.
func (p *PairsTrader) Pair() *PairStats { return p.pair }

// Train screens the supplied history against the peer leg and stores the
// hedge statistics when the pair qualifies.
func (p *PairsTrader) Train(history []market.Bar) {
	if len(p.peer) == 0 {
		p.pair, p.reject = nil, "no peer series configured"
		return
	}
	n := len(history)
	if len(p.peer) < n {
		n = len(p.peer)
	}
	a := market.Closes(history[len(history)-n:])
	b := market.Closes(p.peer[len(p.peer)-n:])
	p.pair, p.reject = ScreenPair(a, b, p.params)
}

// Analyze computes the current spread z-score under the calibrated hedge
// ratio and applies the mean-reversion thresholds to it.
func (p *PairsTrader) Analyze(history []market.Bar) signal.Signal {
	if len(history) < p.params.Lookback {
		return insufficient(history, p.params.Lookback)
	}
	if p.pair == nil {
		reason := "no cointegrated pair calibrated"
		if p.reject != "" {
			reason = "pair rejected: " + p.reject
		}
		return holdSignal(history, 0, reason)
	}
	if len(p.peer) < len(history) {
		return holdSignal(history, 0, "peer history shorter than primary leg")
	}

	last := market.Last(history)
	peerLast := p.peer[len(history)-1]
	spread := last.Close - (p.pair.Intercept + p.pair.HedgeRatio*peerLast.Close)

	z := 0.0
	if p.pair.SpreadStd != 0 {
		z = (spread - p.pair.SpreadMean) / p.pair.SpreadStd
	}

	var s signal.Signal
	switch {
	case z <= -p.params.EntryThreshold:
		s = signal.Signal{
			Type:       signal.Buy,
			Confidence: math.Min(math.Abs(z)/p.params.EntryThreshold, 1.0),
			Reasoning:  fmt.Sprintf("spread %.2f sigma below mean, half-life %.1f bars", -z, p.pair.HalfLife),
		}
	case z >= p.params.EntryThreshold:
		s = signal.Signal{
			Type:       signal.Sell,
			Confidence: math.Min(math.Abs(z)/p.params.EntryThreshold, 1.0),
			Reasoning:  fmt.Sprintf("spread %.2f sigma above mean, half-life %.1f bars", z, p.pair.HalfLife),
		}
	case math.Abs(z) <= p.params.ExitThreshold:
		s = signal.Signal{Type: signal.Hold, Confidence: 0.3, Reasoning: "spread reverted"}
	default:
		s = signal.Signal{Type: signal.Hold, Confidence: 0.2, Reasoning: "spread neutral"}
	}

	s.Symbol = last.Symbol
	s.Timestamp = last.Timestamp
	s.Price = last.Close
	s.Metadata = map[string]any{
		"spread_zscore": z,
		"hedge_ratio":   p.pair.HedgeRatio,
		"half_life":     p.pair.HalfLife,
	}
	return s
}
