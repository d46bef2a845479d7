package backtest

import (
	"time"

	"github.com/google/uuid"

	"quantlab-go/internal/execution"
)

// ExitReason records why a trade was closed.
type ExitReason string

const (
	ExitSignal     ExitReason = "signal"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Trade is one position lifecycle. The engine creates it on a qualifying
// signal and mutates it exactly once, at close, to fill in the exit fields;
// while IsOpen the exit fields hold their zero values.
type Trade struct {
	ID             string         `json:"id"`
	Symbol         string         `json:"symbol"`
	Side           execution.Side `json:"side"`
	EntryTime      time.Time      `json:"entry_time"`
	ExitTime       time.Time      `json:"exit_time,omitempty"`
	EntryPrice     float64        `json:"entry_price"`
	ExitPrice      float64        `json:"exit_price,omitempty"`
	Quantity       float64        `json:"quantity"`
	PnL            float64        `json:"pnl"`
	PnLPct         float64        `json:"pnl_pct"`
	CommissionPaid float64        `json:"commission_paid"`
	IsOpen         bool           `json:"is_open"`
	ExitReason     ExitReason     `json:"exit_reason,omitempty"`
}

func newTrade(symbol string, entryTime time.Time, entryPrice, qty, entryCommission float64) *Trade {
	return &Trade{
		ID:             uuid.NewString(),
		Symbol:         symbol,
		Side:           execution.Long,
		EntryTime:      entryTime,
		EntryPrice:     entryPrice,
		Quantity:       qty,
		CommissionPaid: entryCommission,
		IsOpen:         true,
	}
}

// close fills the exit fields and returns the realized cash delta for the
// account (gross P&L minus the exit commission; the entry commission was
// already debited at open).
func (t *Trade) close(exitTime time.Time, exitPrice, exitCommission float64, reason ExitReason) float64 {
	gross := (exitPrice - t.EntryPrice) * t.Quantity
	t.ExitTime = exitTime
	t.ExitPrice = exitPrice
	t.CommissionPaid += exitCommission
	t.PnL = gross - t.CommissionPaid
	if notional := t.EntryPrice * t.Quantity; notional > 0 {
		t.PnLPct = t.PnL / notional * 100
	}
	t.IsOpen = false
	t.ExitReason = reason
	return gross - exitCommission
}

// Unrealized marks the open position against a price.
func (t *Trade) Unrealized(price float64) float64 {
	if !t.IsOpen {
		return 0
	}
	return (price - t.EntryPrice) * t.Quantity
}

// Duration returns the holding period of a closed trade.
func (t *Trade) Duration() time.Duration {
	if t.IsOpen {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime)
}
