// Package ensemble combines the signals of several agents into one consensus
// decision and tracks each member's historical accuracy for adaptive
// weighting.
package ensemble

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"quantlab-go/internal/agent"
	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
)

// Policy selects how member signals are folded into one.
type Policy string

const (
	MajorityVote        Policy = "majority_vote"
	WeightedAverage     Policy = "weighted_average"
	ConfidenceWeighted  Policy = "confidence_weighted"
	PerformanceWeighted Policy = "performance_weighted"
)

// ParsePolicy maps a config string onto a Policy, defaulting to majority vote.
func ParsePolicy(s string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case WeightedAverage:
		return WeightedAverage
	case ConfidenceWeighted:
		return ConfidenceWeighted
	case PerformanceWeighted:
		return PerformanceWeighted
	default:
		return MajorityVote
	}
}

// Performance is the outcome bookkeeping kept per member. It is mutated only
// through RecordOutcome.
type Performance struct {
	Correct       int
	Total         int
	CumulativePnL float64
}

// Accuracy returns correct/total, 0 with no recorded outcomes.
func (p Performance) Accuracy() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Total)
}

// minOutcomes is how many recorded outcomes a member needs before its
// accuracy replaces the neutral default in weighting.
const minOutcomes = 10

type member struct {
	agent  agent.Agent
	active bool
	weight float64
	perf   Performance
}

// currentAccuracy is the accuracy used for performance weighting: the neutral
// 0.5 until enough outcomes accumulate.
func (m *member) currentAccuracy() float64 {
	if m.perf.Total < minOutcomes {
		return 0.5
	}
	return m.perf.Accuracy()
}

// Aggregator owns an ordered set of member agents and satisfies the Agent
// interface itself, so it can drive a backtest like any single strategy.
type Aggregator struct {
	policy  Policy
	members []*member
	log     zerolog.Logger
}

// New builds an aggregator over the supplied members, every one active with
// weight 1.0.
func New(policy Policy, log zerolog.Logger, agents ...agent.Agent) *Aggregator {
	a := &Aggregator{policy: policy, log: log}
	for _, ag := range agents {
		a.Add(ag)
	}
	return a
}

// Add appends a member agent with the initial weight of 1.0.
func (a *Aggregator) Add(ag agent.Agent) {
	a.members = append(a.members, &member{agent: ag, active: true, weight: 1.0})
}

// Name returns the identifier used in logs and results.
func (a *Aggregator) Name() string { return "Ensemble(" + string(a.policy) + ")" }

// SetActive toggles a member in or out of signal collection.
func (a *Aggregator) SetActive(name string, active bool) error {
	for _, m := range a.members {
		if m.agent.Name() == name {
			m.active = active
			return nil
		}
	}
	return fmt.Errorf("unknown ensemble member %q", name)
}

// Train forwards the history to every member.
func (a *Aggregator) Train(history []market.Bar) {
	for _, m := range a.members {
		m.agent.Train(history)
	}
}

// Analyze queries every active member and combines their signals under the
// configured policy. With no active members it degrades to a neutral hold.
func (a *Aggregator) Analyze(history []market.Bar) signal.Signal {
	type voted struct {
		m   *member
		sig signal.Signal
	}
	var votes []voted
	for _, m := range a.members {
		if !m.active {
			continue
		}
		votes = append(votes, voted{m: m, sig: m.agent.Analyze(history)})
	}
	if len(votes) == 0 {
		s := signal.Signal{Type: signal.Hold, Confidence: 0, Reasoning: "no active ensemble members"}
		if len(history) > 0 {
			last := market.Last(history)
			s.Symbol, s.Timestamp, s.Price = last.Symbol, last.Timestamp, last.Close
		}
		return s
	}

	sigs := make([]signal.Signal, len(votes))
	for i, v := range votes {
		sigs[i] = v.sig
	}

	var out signal.Signal
	switch a.policy {
	case WeightedAverage:
		weights := make([]float64, len(votes))
		for i, v := range votes {
			weights[i] = v.m.weight
		}
		out = combineWeighted(sigs, weights, false)
	case ConfidenceWeighted:
		weights := make([]float64, len(votes))
		for i, v := range votes {
			weights[i] = v.sig.Confidence
		}
		out = combineWeighted(sigs, weights, true)
	case PerformanceWeighted:
		weights := make([]float64, len(votes))
		for i, v := range votes {
			weights[i] = v.m.currentAccuracy() * v.m.weight
		}
		out = combineWeighted(sigs, weights, false)
	default:
		out = combineMajority(sigs)
	}

	last := market.Last(history)
	out.Symbol = last.Symbol
	out.Timestamp = last.Timestamp
	out.Price = last.Close
	members := make(map[string]string, len(votes))
	for _, v := range votes {
		members[v.m.agent.Name()] = v.sig.Type.String()
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	out.Metadata["policy"] = string(a.policy)
	out.Metadata["member_signals"] = members
	return out
}

// combineMajority picks the most voted signal type; ties fall back to hold.
// Confidence is the winner side's mean confidence scaled by its vote share.
func combineMajority(sigs []signal.Signal) signal.Signal {
	counts := make(map[signal.Type]int)
	confSums := make(map[signal.Type]float64)
	for _, s := range sigs {
		counts[s.Type]++
		confSums[s.Type] += s.Confidence
	}

	winner := signal.Hold
	best, tied := 0, false
	for t, n := range counts {
		if n > best {
			winner, best, tied = t, n, false
		} else if n == best {
			tied = true
		}
	}
	if tied {
		return signal.Signal{Type: signal.Hold, Confidence: 0.2,
			Reasoning: fmt.Sprintf("split vote across %d members", len(sigs))}
	}

	share := float64(best) / float64(len(sigs))
	return signal.Signal{
		Type:       winner,
		Confidence: confSums[winner] / float64(best) * share,
		Reasoning:  fmt.Sprintf("%d of %d members vote %s", best, len(sigs), winner),
	}
}

// combineWeighted folds the integer signal scores under the supplied weights
// and re-buckets the continuous result. When scaleByAgreement is set the
// confidence is further reduced by the fraction of members whose direction
// matches the final score's sign.
func combineWeighted(sigs []signal.Signal, weights []float64, scaleByAgreement bool) signal.Signal {
	var sum, totalWeight float64
	for i, s := range sigs {
		sum += float64(s.Type.Score()) * weights[i] * s.Confidence
		totalWeight += weights[i]
	}
	score := 0.0
	if totalWeight > 0 {
		score = sum / totalWeight
	}

	conf := math.Min(math.Abs(score)/2, 1.0)
	if scaleByAgreement {
		agreeing := 0
		for _, s := range sigs {
			if sameDirection(float64(s.Type.Score()), score) {
				agreeing++
			}
		}
		conf *= float64(agreeing) / float64(len(sigs))
	}

	return signal.Signal{
		Type:       signal.FromScore(score),
		Confidence: conf,
		Reasoning:  fmt.Sprintf("weighted ensemble score %.2f across %d members", score, len(sigs)),
		Metadata:   map[string]any{"score": score},
	}
}

func sameDirection(a, b float64) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	return (a > 0) == (b > 0)
}

// RecordOutcome lets an external evaluator report whether a member's
// prediction was correct and the resulting P&L. Once enough outcomes are
// recorded the member's learned weight tracks its accuracy, clamped to
// [0.5, 2.0].
func (a *Aggregator) RecordOutcome(name string, correct bool, pnl float64) error {
	for _, m := range a.members {
		if m.agent.Name() != name {
			continue
		}
		m.perf.Total++
		if correct {
			m.perf.Correct++
		}
		m.perf.CumulativePnL += pnl
		if m.perf.Total >= minOutcomes {
			w := 0.5 + 1.5*m.perf.Accuracy()
			m.weight = math.Max(0.5, math.Min(2.0, w))
		}
		a.log.Debug().Str("member", name).Bool("correct", correct).
			Float64("pnl", pnl).Float64("weight", m.weight).Msg("ensemble outcome recorded")
		return nil
	}
	return fmt.Errorf("unknown ensemble member %q", name)
}

// Weight exposes a member's current learned weight, mainly for tests and
// dashboards.
func (a *Aggregator) Weight(name string) (float64, error) {
	for _, m := range a.members {
		if m.agent.Name() == name {
			return m.weight, nil
		}
	}
	return 0, fmt.Errorf("unknown ensemble member %q", name)
}

// Ranking is one row of the read-only performance view.
type Ranking struct {
	Name          string  `json:"name"`
	Accuracy      float64 `json:"accuracy"`
	Outcomes      int     `json:"outcomes"`
	CumulativePnL float64 `json:"cumulative_pnl"`
	Weight        float64 `json:"weight"`
	Active        bool    `json:"active"`
}

// Rankings returns the members sorted by accuracy, best first.
func (a *Aggregator) Rankings() []Ranking {
	out := make([]Ranking, 0, len(a.members))
	for _, m := range a.members {
		out = append(out, Ranking{
			Name:          m.agent.Name(),
			Accuracy:      m.perf.Accuracy(),
			Outcomes:      m.perf.Total,
			CumulativePnL: m.perf.CumulativePnL,
			Weight:        m.weight,
			Active:        m.active,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Accuracy > out[j].Accuracy })
	return out
}
