package agent

import (
	"fmt"
	"math"
	"math/rand"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

const (
	dqnActions  = 3 // sell, hold, buy
	dqnLookback = 15
)

// DQN is a reinforcement-learning-style stand-in: a small tabular Q function
// over discretized (momentum, RSI) states with epsilon-greedy action
// selection. Exploration randomness comes exclusively from the injected
// rand source so a seeded run is reproducible.
type DQN struct {
	epsilon float64
	alpha   float64
	rng     *rand.Rand
	q       [][]float64
}

// NewDQN builds the stand-in. A nil rng disables exploration entirely, which
// keeps the agent deterministic by default.
func NewDQN(epsilon, learningRate float64, rng *rand.Rand) *DQN {
	if epsilon < 0 || epsilon > 1 {
		epsilon = 0.1
	}
	if learningRate <= 0 || learningRate > 1 {
		learningRate = 0.1
	}
	q := make([][]float64, dqnStates())
	for i := range q {
		q[i] = make([]float64, dqnActions)
	}
	return &DQN{epsilon: epsilon, alpha: learningRate, rng: rng, q: q}
}

// Name returns the identifier used in logs and rankings.
func (d *DQN) Name() string { return "DQN" }

// 3 momentum buckets x 3 RSI buckets
func dqnStates() int { return 9 }

func dqnState(closes []float64) int {
	ret := 0.0
	if n := len(closes); n >= 2 && closes[n-2] != 0 {
		ret = closes[n-1]/closes[n-2] - 1
	}
	mom := 1
	if ret > 0.002 {
		mom = 2
	} else if ret < -0.002 {
		mom = 0
	}

	rsi := indicators.RSI(closes, 14)
	band := 1
	if rsi < 30 {
		band = 0
	} else if rsi > 70 {
		band = 2
	}
	return mom*3 + band
}

// Train replays the history, rewarding each action with the next bar's signed
// return and nudging the table by the learning rate.
func (d *DQN) Train(history []market.Bar) {
	closes := market.Closes(history)
	for i := dqnLookback; i < len(closes)-1; i++ {
		state := dqnState(closes[:i+1])
		next := 0.0
		if closes[i] != 0 {
			next = closes[i+1]/closes[i] - 1
		}
		// action rewards: sell profits from drops, buy from rises
		rewards := [dqnActions]float64{-next, 0, next}
		for action, reward := range rewards {
			d.q[state][action] += d.alpha * (reward - d.q[state][action])
		}
	}
}

// Analyze picks the greedy action for the current state, or a random one with
// probability epsilon when an exploration source is present.
func (d *DQN) Analyze(history []market.Bar) signal.Signal {
	if len(history) < dqnLookback+1 {
		return insufficient(history, dqnLookback+1)
	}

	closes := market.Closes(history)
	state := dqnState(closes)

	explored := false
	action := argmax(d.q[state])
	if d.rng != nil && d.rng.Float64() < d.epsilon {
		action = d.rng.Intn(dqnActions)
		explored = true
	}

	// confidence from the chosen action's edge over the alternatives
	best, second := topTwo(d.q[state])
	conf := 0.2
	if spread := best - second; spread > 0 {
		conf = math.Min(0.2+spread*100, 1.0)
	}
	if explored {
		conf = 0.2
	}

	var s signal.Signal
	switch action {
	case 0:
		s = signal.Signal{Type: signal.Sell, Confidence: conf,
			Reasoning: fmt.Sprintf("q-values favor selling in state %d", state)}
	case 2:
		s = signal.Signal{Type: signal.Buy, Confidence: conf,
			Reasoning: fmt.Sprintf("q-values favor buying in state %d", state)}
	default:
		s = signal.Signal{Type: signal.Hold, Confidence: conf,
			Reasoning: fmt.Sprintf("q-values favor waiting in state %d", state)}
	}

	last := market.Last(history)
	s.Symbol = last.Symbol
	s.Timestamp = last.Timestamp
	s.Price = last.Close
	s.Metadata = map[string]any{"state": state, "explored": explored}
	return s
}

// argmax starts at the hold action so an untrained or tied table stays flat.
func argmax(q []float64) int {
	best := 1
	for i, v := range q {
		if v > q[best] {
			best = i
		}
	}
	return best
}

func topTwo(q []float64) (best, second float64) {
	best, second = math.Inf(-1), math.Inf(-1)
	for _, v := range q {
		if v > best {
			second = best
			best = v
		} else if v > second {
			second = v
		}
	}
	return best, second
}
