// Package risk encodes the guard-rails the backtest engine applies to open
// positions.
package risk

// Limits bounds position count and per-trade loss/profit exits. Zero-valued
// stop or take thresholds disable that check.
type Limits struct {
	MaxPositions  int
	StopLossPct   float64
	TakeProfitPct float64
}

// AllowOpen reports whether another position may be opened alongside the
// given number of already-open ones.
func (l Limits) AllowOpen(open int) bool {
	return open < l.MaxPositions
}

// StopPrice returns the stop-loss trigger for a long entry, 0 when disabled.
func (l Limits) StopPrice(entry float64) float64 {
	if l.StopLossPct <= 0 {
		return 0
	}
	return entry * (1 - l.StopLossPct)
}

// TakePrice returns the take-profit trigger for a long entry, 0 when disabled.
func (l Limits) TakePrice(entry float64) float64 {
	if l.TakeProfitPct <= 0 {
		return 0
	}
	return entry * (1 + l.TakeProfitPct)
}
