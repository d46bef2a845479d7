package agent

import (
	"math/rand"
	"testing"

	"quantlab-go/internal/signal"
)

func TestDQNInsufficientHistory(t *testing.T) {
	ag := NewDQN(0.1, 0.1, nil)
	sig := ag.Analyze(barsFromCloses(trendingCloses(10, 0.01)))
	if sig.Type != signal.Hold || sig.Confidence != 0 {
		t.Fatalf("expected zero-confidence hold, got %v conf %v", sig.Type, sig.Confidence)
	}
}

func TestDQNUntrainedHolds(t *testing.T) {
	ag := NewDQN(0.1, 0.1, nil)
	sig := ag.Analyze(barsFromCloses(trendingCloses(30, 0.01)))
	if sig.Type != signal.Hold {
		t.Fatalf("zeroed q-table must hold, got %v", sig.Type)
	}
}

func TestDQNLearnsToBuyUptrend(t *testing.T) {
	ag := NewDQN(0.1, 0.1, nil)
	bars := barsFromCloses(trendingCloses(60, 0.01))
	ag.Train(bars)
	sig := ag.Analyze(bars)
	if sig.Type != signal.Buy {
		t.Fatalf("expected buy after training on an uptrend, got %v (%s)", sig.Type, sig.Reasoning)
	}
}

func TestDQNSeededExplorationIsReproducible(t *testing.T) {
	bars := barsFromCloses(trendingCloses(60, 0.01))

	runSequence := func(seed int64) []signal.Type {
		ag := NewDQN(0.5, 0.1, rand.New(rand.NewSource(seed)))
		ag.Train(bars)
		types := make([]signal.Type, 0, 20)
		for i := 0; i < 20; i++ {
			types = append(types, ag.Analyze(bars).Type)
		}
		return types
	}

	first := runSequence(42)
	second := runSequence(42)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at step %d: %v vs %v", i, first[i], second[i])
		}
	}
}
