// Package signal standardizes the trading recommendations shared between agents,
// the ensemble, and the backtest engine.
package signal

import "time"

// Type enumerates the directional recommendations an agent can emit.
type Type int

const (
	StrongSell Type = iota - 2
	Sell
	Hold
	Buy
	StrongBuy
)

// Score maps a signal type onto the integer scale used by weighted ensembles.
func (t Type) Score() int { return int(t) }

// FromScore buckets a continuous ensemble score back into a signal type using
// the fixed cut points at ±0.5 and ±1.5.
func FromScore(score float64) Type {
	switch {
	case score >= 1.5:
		return StrongBuy
	case score >= 0.5:
		return Buy
	case score <= -1.5:
		return StrongSell
	case score <= -0.5:
		return Sell
	default:
		return Hold
	}
}

func (t Type) String() string {
	switch t {
	case StrongSell:
		return "STRONG_SELL"
	case Sell:
		return "SELL"
	case Buy:
		return "BUY"
	case StrongBuy:
		return "STRONG_BUY"
	default:
		return "HOLD"
	}
}

// Signal expresses a directional recommendation produced by one Analyze call.
// A Signal is created fresh per call, never mutated afterwards, and owned by
// the caller. Fields the engine acts on (Type, Confidence) are strongly
// typed; Metadata only carries extras for display and logging.
type Signal struct {
	Type       Type           `json:"type"`
	Confidence float64        `json:"confidence"` // in [0,1]
	Symbol     string         `json:"symbol"`
	Timestamp  time.Time      `json:"timestamp"`
	Price      float64        `json:"price,omitempty"`
	Reasoning  string         `json:"reasoning"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IsBuy reports whether the signal recommends opening long exposure.
func (s Signal) IsBuy() bool { return s.Type == Buy || s.Type == StrongBuy }

// IsSell reports whether the signal recommends closing long exposure.
func (s Signal) IsSell() bool { return s.Type == Sell || s.Type == StrongSell }
