package agent

import (
	"testing"

	"quantlab-go/internal/signal"
)

func TestLSTMInsufficientHistory(t *testing.T) {
	ag := NewLSTM(20)
	sig := ag.Analyze(barsFromCloses(trendingCloses(10, 0.01)))
	if sig.Type != signal.Hold || sig.Confidence != 0 {
		t.Fatalf("expected zero-confidence hold, got %v conf %v", sig.Type, sig.Confidence)
	}
}

func TestLSTMUptrendBuys(t *testing.T) {
	ag := NewLSTM(20)
	sig := ag.Analyze(barsFromCloses(trendingCloses(30, 0.01)))
	if sig.Type != signal.Buy {
		t.Fatalf("expected buy on consistent uptrend, got %v (%s)", sig.Type, sig.Reasoning)
	}
	if _, ok := sig.Metadata["activation"]; !ok {
		t.Fatalf("activation missing from metadata")
	}
}

func TestLSTMDowntrendSells(t *testing.T) {
	ag := NewLSTM(20)
	sig := ag.Analyze(barsFromCloses(trendingCloses(30, -0.01)))
	if sig.Type != signal.Sell {
		t.Fatalf("expected sell on consistent downtrend, got %v (%s)", sig.Type, sig.Reasoning)
	}
}

func TestLSTMDeterministicAcrossCalls(t *testing.T) {
	ag := NewLSTM(20)
	bars := barsFromCloses(trendingCloses(30, 0.01))
	first := ag.Analyze(bars)
	second := ag.Analyze(bars)
	if first.Type != second.Type || first.Confidence != second.Confidence {
		t.Fatalf("forward pass must be deterministic")
	}
}
