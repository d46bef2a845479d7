package ensemble

import (
	"math"
	"testing"
	"time"

	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
	"quantlab-go/internal/util"
)

// fixedAgent always answers with the same signal.
type fixedAgent struct {
	name string
	sig  signal.Signal
}

func (f *fixedAgent) Name() string { return f.name }

func (f *fixedAgent) Train(history []market.Bar) {}

func (f *fixedAgent) Analyze(history []market.Bar) signal.Signal { return f.sig }

func fixed(name string, t signal.Type, conf float64) *fixedAgent {
	return &fixedAgent{name: name, sig: signal.Signal{Type: t, Confidence: conf}}
}

func testBars() []market.Bar {
	return []market.Bar{{
		Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Close:     100, Symbol: "TEST",
	}}
}

func TestMajorityVote(t *testing.T) {
	agg := New(MajorityVote, util.NewLoggerTo(nil, "disabled"),
		fixed("a", signal.Buy, 0.9),
		fixed("b", signal.Buy, 0.7),
		fixed("c", signal.Buy, 0.5),
		fixed("d", signal.Sell, 0.8),
		fixed("e", signal.Hold, 0.2),
	)
	sig := agg.Analyze(testBars())
	if sig.Type != signal.Buy {
		t.Fatalf("expected buy, got %v", sig.Type)
	}
	// mean(0.9, 0.7, 0.5) x 3/5
	if math.Abs(sig.Confidence-0.42) > 1e-9 {
		t.Fatalf("expected confidence 0.42, got %v", sig.Confidence)
	}
}

func TestMajorityVoteTieHolds(t *testing.T) {
	agg := New(MajorityVote, util.NewLoggerTo(nil, "disabled"),
		fixed("a", signal.Buy, 0.9),
		fixed("b", signal.Sell, 0.9),
	)
	if sig := agg.Analyze(testBars()); sig.Type != signal.Hold {
		t.Fatalf("tie must hold, got %v", sig.Type)
	}
}

func TestWeightedAverageOpposingSignalsCancel(t *testing.T) {
	agg := New(WeightedAverage, util.NewLoggerTo(nil, "disabled"),
		fixed("a", signal.Buy, 0.8),
		fixed("b", signal.Sell, 0.8),
	)
	sig := agg.Analyze(testBars())
	if sig.Type != signal.Hold {
		t.Fatalf("opposing equal-weight signals must cancel to hold, got %v", sig.Type)
	}
	if score := sig.Metadata["score"].(float64); score != 0 {
		t.Fatalf("expected net score 0, got %v", score)
	}
}

func TestWeightedAverageStrongConsensus(t *testing.T) {
	agg := New(WeightedAverage, util.NewLoggerTo(nil, "disabled"),
		fixed("a", signal.StrongBuy, 1.0),
		fixed("b", signal.StrongBuy, 1.0),
	)
	sig := agg.Analyze(testBars())
	if sig.Type != signal.StrongBuy {
		t.Fatalf("expected strong buy, got %v", sig.Type)
	}
	if sig.Confidence != 1.0 {
		t.Fatalf("expected saturated confidence, got %v", sig.Confidence)
	}
}

func TestConfidenceWeightedScalesByAgreement(t *testing.T) {
	agg := New(ConfidenceWeighted, util.NewLoggerTo(nil, "disabled"),
		fixed("a", signal.StrongBuy, 1.0),
		fixed("b", signal.StrongBuy, 1.0),
		fixed("c", signal.Hold, 0.1),
	)
	sig := agg.Analyze(testBars())
	if sig.Type != signal.StrongBuy {
		t.Fatalf("expected strong buy, got %v", sig.Type)
	}
	// only 2 of 3 members agree with the positive direction
	if sig.Confidence > 2.0/3.0+1e-9 {
		t.Fatalf("agreement scaling missing, confidence %v", sig.Confidence)
	}
}

func TestRecordOutcomeAdjustsWeight(t *testing.T) {
	agg := New(PerformanceWeighted, util.NewLoggerTo(nil, "disabled"),
		fixed("sharp", signal.Buy, 0.9),
	)

	w, err := agg.Weight("sharp")
	if err != nil || w != 1.0 {
		t.Fatalf("initial weight should be 1.0, got %v err %v", w, err)
	}

	// 8 correct out of 10: weight becomes 0.5 + 1.5*0.8 = 1.7
	for i := 0; i < 10; i++ {
		if err := agg.RecordOutcome("sharp", i < 8, 5); err != nil {
			t.Fatalf("record outcome: %v", err)
		}
	}
	w, _ = agg.Weight("sharp")
	if math.Abs(w-1.7) > 1e-9 {
		t.Fatalf("expected weight 1.7, got %v", w)
	}

	if err := agg.RecordOutcome("unknown", true, 0); err == nil {
		t.Fatalf("unknown member must error")
	}
}

func TestWeightClamped(t *testing.T) {
	agg := New(PerformanceWeighted, util.NewLoggerTo(nil, "disabled"),
		fixed("dull", signal.Buy, 0.9),
	)
	for i := 0; i < 12; i++ {
		_ = agg.RecordOutcome("dull", false, -5)
	}
	w, _ := agg.Weight("dull")
	if w != 0.5 {
		t.Fatalf("all-wrong member must clamp to 0.5, got %v", w)
	}
}

func TestRankingsSortedByAccuracy(t *testing.T) {
	agg := New(MajorityVote, util.NewLoggerTo(nil, "disabled"),
		fixed("worse", signal.Buy, 0.5),
		fixed("better", signal.Buy, 0.5),
	)
	for i := 0; i < 10; i++ {
		_ = agg.RecordOutcome("better", true, 1)
		_ = agg.RecordOutcome("worse", i == 0, -1)
	}
	rankings := agg.Rankings()
	if len(rankings) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rankings))
	}
	if rankings[0].Name != "better" {
		t.Fatalf("rankings must sort by accuracy, got %q first", rankings[0].Name)
	}
	if rankings[0].Accuracy != 1.0 || rankings[0].Outcomes != 10 {
		t.Fatalf("unexpected top row: %+v", rankings[0])
	}
}

func TestInactiveMembersExcluded(t *testing.T) {
	agg := New(MajorityVote, util.NewLoggerTo(nil, "disabled"),
		fixed("loud", signal.StrongBuy, 1.0),
		fixed("quiet", signal.Sell, 1.0),
	)
	if err := agg.SetActive("loud", false); err != nil {
		t.Fatalf("set active: %v", err)
	}
	sig := agg.Analyze(testBars())
	if sig.Type != signal.Sell {
		t.Fatalf("deactivated member must not vote, got %v", sig.Type)
	}
}
