// Package execution models how the backtest engine fills orders: slippage on
// both sides of a trade, notional-based commission, and whole-unit sizing.
package execution

import "math"

// Side enumerates trade directions.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Simulator converts bar close prices into executed prices and costs under a
// fixed slippage and commission rate. The zero value fills at the close with
// no costs.
type Simulator struct {
	slippage   float64
	commission float64
}

// NewSimulator builds a fill simulator from fractional slippage and
// commission rates.
func NewSimulator(slippage, commission float64) Simulator {
	return Simulator{slippage: slippage, commission: commission}
}

// EntryPrice applies adverse slippage to a long entry at the close.
func (s Simulator) EntryPrice(close float64) float64 {
	return close * (1 + s.slippage)
}

// ExitPrice applies adverse slippage to a long exit at the close.
func (s Simulator) ExitPrice(close float64) float64 {
	return close * (1 - s.slippage)
}

// Quantity sizes a position as whole units of the deployable capital slice.
// A zero quantity means the account cannot afford one unit; callers skip the
// trade silently.
func (s Simulator) Quantity(capital, positionSize, entryPrice float64) float64 {
	if entryPrice <= 0 {
		return 0
	}
	return math.Floor(capital * positionSize / entryPrice)
}

// Commission charges the notional-based fee for one fill.
func (s Simulator) Commission(qty, price float64) float64 {
	return qty * price * s.commission
}
