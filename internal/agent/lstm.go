package agent

import (
	"fmt"
	"math"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// LSTM is a forward-pass-only numeric stand-in for a recurrent price model:
// a fixed gate over recency-weighted returns squashed through tanh. There is
// no gradient training; Train only rescales the input normalization.
type LSTM struct {
	window  int
	weights []float64
	scale   float64
}

// NewLSTM builds the stand-in with exponentially decaying weights over the
// trailing window of returns.
func NewLSTM(window int) *LSTM {
	if window <= 0 {
		window = 20
	}
	weights := make([]float64, window)
	var sum float64
	for i := range weights {
		// most recent return gets the largest weight
		weights[i] = math.Pow(0.9, float64(window-1-i))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return &LSTM{window: window, weights: weights, scale: 50}
}

// Name returns the identifier used in logs and rankings.
func (l *LSTM) Name() string { return "LSTM" }

// Train rescales the activation so that typical return magnitudes in the
// history land in tanh's responsive range.
func (l *LSTM) Train(history []market.Bar) {
	closes := market.Closes(history)
	if len(closes) < 3 {
		return
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns = append(returns, closes[i]/closes[i-1]-1)
		}
	}
	if std := indicators.StdDev(returns); std > 0 {
		l.scale = 1 / std
	}
}

// Analyze runs the forward pass over the trailing window of returns.
func (l *LSTM) Analyze(history []market.Bar) signal.Signal {
	if len(history) < l.window+1 {
		return insufficient(history, l.window+1)
	}

	closes := market.Closes(market.Tail(history, l.window+1))
	var activation float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		activation += l.weights[i-1] * (closes[i]/closes[i-1] - 1) * l.scale
	}
	score := math.Tanh(activation)

	var s signal.Signal
	conf := math.Min(math.Abs(score), 1.0)
	switch {
	case score > 0.3:
		s = signal.Signal{Type: signal.Buy, Confidence: conf,
			Reasoning: fmt.Sprintf("model activation %.2f favors upside", score)}
	case score < -0.3:
		s = signal.Signal{Type: signal.Sell, Confidence: conf,
			Reasoning: fmt.Sprintf("model activation %.2f favors downside", score)}
	default:
		s = signal.Signal{Type: signal.Hold, Confidence: 0.2, Reasoning: "model activation near zero"}
	}

	last := market.Last(history)
	s.Symbol = last.Symbol
	s.Timestamp = last.Timestamp
	s.Price = last.Close
	s.Metadata = map[string]any{"activation": score}
	return s
}
