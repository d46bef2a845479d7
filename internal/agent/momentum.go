package agent

import (
	"fmt"
	"math"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// Momentum combines three independent indicator votes (SMA crossover, RSI
// extremes, MACD histogram sign) into a majority decision.
type Momentum struct {
	shortPeriod int
	longPeriod  int
	rsiPeriod   int
}

// NewMomentum builds a momentum agent; non-positive periods fall back to
// 10/30/14 defaults.
func NewMomentum(shortPeriod, longPeriod, rsiPeriod int) *Momentum {
	if shortPeriod <= 0 {
		shortPeriod = 10
	}
	if longPeriod <= shortPeriod {
		longPeriod = 3 * shortPeriod
	}
	if rsiPeriod <= 0 {
		rsiPeriod = 14
	}
	return &Momentum{shortPeriod: shortPeriod, longPeriod: longPeriod, rsiPeriod: rsiPeriod}
}

// Name returns the identifier used in logs and rankings.
func (m *Momentum) Name() string { return "Momentum" }

// Train is a no-op: the momentum indicators carry no calibration state.
func (m *Momentum) Train(history []market.Bar) {}

// vote is one indicator opinion, direction +1 long / -1 short.
type vote struct {
	direction  int
	confidence float64
	tag        string
}

func (m *Momentum) lookback() int {
	need := m.longPeriod
	if m.rsiPeriod+1 > need {
		need = m.rsiPeriod + 1
	}
	return need
}

// Analyze collects up to three indicator votes and resolves them by majority;
// no votes or a tie yields HOLD.
func (m *Momentum) Analyze(history []market.Bar) signal.Signal {
	if len(history) < m.lookback() {
		return insufficient(history, m.lookback())
	}
	return m.resolve(history, m.votes(market.Closes(history)))
}

func (m *Momentum) votes(closes []float64) []vote {
	var votes []vote

	smaShort := indicators.SMA(closes, m.shortPeriod)
	smaLong := indicators.SMA(closes, m.longPeriod)
	if smaLong > 0 && smaShort != smaLong {
		dir := 1
		if smaShort < smaLong {
			dir = -1
		}
		conf := math.Min(math.Abs(smaShort-smaLong)/smaLong*20, 1.0)
		votes = append(votes, vote{direction: dir, confidence: conf, tag: "sma"})
	}

	rsi := indicators.RSI(closes, m.rsiPeriod)
	switch {
	case rsi < 30:
		votes = append(votes, vote{direction: 1, confidence: math.Min((30-rsi)/30, 1.0), tag: "rsi"})
	case rsi > 70:
		votes = append(votes, vote{direction: -1, confidence: math.Min((rsi-70)/30, 1.0), tag: "rsi"})
	}

	price := closes[len(closes)-1]
	if _, _, hist := indicators.MACD(closes); hist != 0 && price > 0 {
		dir := 1
		if hist < 0 {
			dir = -1
		}
		conf := math.Min(math.Abs(hist)/(price*0.01), 1.0)
		votes = append(votes, vote{direction: dir, confidence: conf, tag: "macd"})
	}

	return votes
}

func (m *Momentum) resolve(history []market.Bar, votes []vote) signal.Signal {
	var longN, shortN int
	var longConf, shortConf float64
	tags := make(map[string]int, len(votes))
	for _, v := range votes {
		tags[v.tag] = v.direction
		if v.direction > 0 {
			longN++
			longConf += v.confidence
		} else {
			shortN++
			shortConf += v.confidence
		}
	}

	var s signal.Signal
	switch {
	case len(votes) == 0 || longN == shortN:
		s = signal.Signal{Type: signal.Hold, Confidence: 0.2, Reasoning: "no directional consensus"}
	case longN > shortN:
		s = signal.Signal{
			Type:       signal.Buy,
			Confidence: longConf / float64(longN),
			Reasoning:  fmt.Sprintf("%d of %d indicators vote long", longN, len(votes)),
		}
	default:
		s = signal.Signal{
			Type:       signal.Sell,
			Confidence: shortConf / float64(shortN),
			Reasoning:  fmt.Sprintf("%d of %d indicators vote short", shortN, len(votes)),
		}
	}

	last := market.Last(history)
	s.Symbol = last.Symbol
	s.Timestamp = last.Timestamp
	s.Price = last.Close
	s.Metadata = map[string]any{"votes": tags}
	return s
}
