package backtest

import (
	"math"
	"testing"
	"time"

	"quantlab-go/internal/market"
	"quantlab-go/internal/signal"
	"quantlab-go/internal/util"
)

// scriptedAgent signals from close prices: buy at buyPrice, sell at
// sellPrice, hold otherwise. Stateless, so runs are repeatable.
type scriptedAgent struct {
	buyPrice   float64
	sellPrice  float64
	confidence float64
}

func (s *scriptedAgent) Name() string { return "Scripted" }

func (s *scriptedAgent) Train(history []market.Bar) {}

func (s *scriptedAgent) Analyze(history []market.Bar) signal.Signal {
	last := market.Last(history)
	sig := signal.Signal{Type: signal.Hold, Symbol: last.Symbol, Timestamp: last.Timestamp, Price: last.Close}
	switch last.Close {
	case s.buyPrice:
		sig.Type = signal.Buy
		sig.Confidence = s.confidence
	case s.sellPrice:
		sig.Type = signal.Sell
		sig.Confidence = s.confidence
	}
	return sig
}

func mkBars(closes []float64) []market.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
			Symbol:    "TEST",
		}
	}
	return bars
}

// 30 daily bars at 100, switching to 110 from index 25
func rallyBars() []market.Bar {
	closes := make([]float64, 30)
	for i := range closes {
		if i < 25 {
			closes[i] = 100
		} else {
			closes[i] = 110
		}
	}
	return mkBars(closes)
}

func testEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, util.NewLoggerTo(nil, "disabled"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestConfigValidation(t *testing.T) {
	bad := []Config{
		{InitialCapital: 0, PositionSize: 0.5, MaxPositions: 1},
		{InitialCapital: -5, PositionSize: 0.5, MaxPositions: 1},
		{InitialCapital: 1000, PositionSize: 0, MaxPositions: 1},
		{InitialCapital: 1000, PositionSize: 1.5, MaxPositions: 1},
		{InitialCapital: 1000, PositionSize: 0.5, MaxPositions: 0},
		{InitialCapital: 1000, PositionSize: 0.5, MaxPositions: 1, Commission: -0.1},
	}
	for i, cfg := range bad {
		if _, err := NewEngine(cfg, util.NewLoggerTo(nil, "disabled")); err == nil {
			t.Fatalf("case %d: expected configuration error", i)
		}
	}
}

func TestRunAccounting(t *testing.T) {
	e := testEngine(t, Config{
		InitialCapital: 100_000,
		Commission:     0.001,
		Slippage:       0,
		PositionSize:   1.0,
		MaxPositions:   1,
	})
	ag := &scriptedAgent{buyPrice: 100, sellPrice: 110, confidence: 0.9}

	res, err := e.Run(ag, rallyBars())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("expected 1 closed trade, got %d", res.TotalTrades)
	}

	tr := res.Trades[0]
	if tr.Quantity != 1000 {
		t.Fatalf("expected quantity floor(100000/100)=1000, got %v", tr.Quantity)
	}
	// gross 10000 minus entry commission 100 and exit commission 110
	if math.Abs(tr.PnL-9790) > 1e-9 {
		t.Fatalf("expected net pnl 9790, got %v", tr.PnL)
	}
	if tr.ExitReason != ExitSignal {
		t.Fatalf("expected signal exit, got %s", tr.ExitReason)
	}
	if math.Abs(res.FinalCapital-109_790) > 1e-9 {
		t.Fatalf("expected final capital 109790, got %v", res.FinalCapital)
	}
	if tr.IsOpen {
		t.Fatalf("closed trade still flagged open")
	}
	if tr.ExitTime.IsZero() || tr.ExitPrice == 0 {
		t.Fatalf("exit fields must be populated after close")
	}
}

func TestEquityCurveLength(t *testing.T) {
	e := testEngine(t, DefaultConfig())
	res, err := e.Run(&scriptedAgent{}, rallyBars())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	processed := 30 - warmupBars
	if len(res.EquityCurve) != processed+1 {
		t.Fatalf("equity curve length %d, want %d", len(res.EquityCurve), processed+1)
	}
	if res.EquityCurve[0] != res.InitialCapital {
		t.Fatalf("curve must start at initial capital")
	}
}

func TestZeroPnLRoundTrip(t *testing.T) {
	// entry and liquidation at the same 100 level with zero costs
	e := testEngine(t, Config{InitialCapital: 100_000, PositionSize: 0.5, MaxPositions: 1})
	bars := rallyBars()
	for i := range bars {
		bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = 100, 100, 100, 100
	}
	res, err := e.Run(&scriptedAgent{buyPrice: 100, sellPrice: -1, confidence: 0.9}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("expected the open trade to be liquidated, got %d trades", res.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.PnL != 0 || tr.PnLPct != 0 {
		t.Fatalf("identical prices with zero costs must net zero, got pnl %v pct %v", tr.PnL, tr.PnLPct)
	}
	if tr.ExitReason != ExitEndOfData {
		t.Fatalf("expected end_of_data exit, got %s", tr.ExitReason)
	}
}

func TestMaxPositionsRespected(t *testing.T) {
	e := testEngine(t, Config{InitialCapital: 100_000, PositionSize: 0.01, MaxPositions: 2})
	// buys on every processed bar until slots are full
	res, err := e.Run(&scriptedAgent{buyPrice: 100, sellPrice: -1, confidence: 0.9}, rallyBars())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalTrades != 2 {
		t.Fatalf("position cap of 2 must limit trades to 2, got %d", res.TotalTrades)
	}
}

func TestStopLossIntrabar(t *testing.T) {
	bars := rallyBars()
	bars[23].Low = 94 // breaches the 5% stop from entry 100 intrabar

	e := testEngine(t, Config{
		InitialCapital: 100_000,
		PositionSize:   0.5,
		MaxPositions:   1,
		StopLossPct:    0.05,
	})
	res, err := e.Run(&scriptedAgent{buyPrice: 100, sellPrice: -1, confidence: 0.9}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalTrades < 1 {
		t.Fatalf("expected at least one trade")
	}
	if res.Trades[0].ExitReason != ExitStopLoss {
		t.Fatalf("expected stop_loss exit, got %s", res.Trades[0].ExitReason)
	}
	if math.Abs(res.Trades[0].ExitPrice-95) > 1e-9 {
		t.Fatalf("stop exit should fill at the 95 threshold, got %v", res.Trades[0].ExitPrice)
	}
}

func TestTakeProfitIntrabar(t *testing.T) {
	bars := rallyBars()

	e := testEngine(t, Config{
		InitialCapital: 100_000,
		PositionSize:   0.5,
		MaxPositions:   1,
		TakeProfitPct:  0.05,
	})
	res, err := e.Run(&scriptedAgent{buyPrice: 100, sellPrice: -1, confidence: 0.9}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// bar 25 jumps to 110, breaching the 105 target
	if res.Trades[0].ExitReason != ExitTakeProfit {
		t.Fatalf("expected take_profit exit, got %s", res.Trades[0].ExitReason)
	}
	if math.Abs(res.Trades[0].ExitPrice-105) > 1e-9 {
		t.Fatalf("take exit should fill at the 105 threshold, got %v", res.Trades[0].ExitPrice)
	}
}

func TestWeakSignalsIgnored(t *testing.T) {
	e := testEngine(t, DefaultConfig())
	res, err := e.Run(&scriptedAgent{buyPrice: 100, sellPrice: 110, confidence: 0.4}, rallyBars())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalTrades != 0 {
		t.Fatalf("confidence at or below 0.5 must not trade, got %d trades", res.TotalTrades)
	}
}

func TestDirtyEngineRefusesSecondRun(t *testing.T) {
	e := testEngine(t, DefaultConfig())
	if _, err := e.Run(&scriptedAgent{}, rallyBars()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := e.Run(&scriptedAgent{}, rallyBars()); err == nil {
		t.Fatalf("second run without reset must fail")
	}
}

func TestResetMakesRunsIdentical(t *testing.T) {
	e := testEngine(t, Config{
		InitialCapital: 100_000,
		Commission:     0.001,
		PositionSize:   1.0,
		MaxPositions:   1,
	})
	ag := &scriptedAgent{buyPrice: 100, sellPrice: 110, confidence: 0.9}

	first, err := e.Run(ag, rallyBars())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	e.Reset()
	second, err := e.Run(ag, rallyBars())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.FinalCapital != second.FinalCapital || first.TotalTrades != second.TotalTrades {
		t.Fatalf("reset runs diverged: %v/%d vs %v/%d",
			first.FinalCapital, first.TotalTrades, second.FinalCapital, second.TotalTrades)
	}
	if len(first.EquityCurve) != len(second.EquityCurve) {
		t.Fatalf("equity curves differ in length")
	}
	for i := range first.EquityCurve {
		if first.EquityCurve[i] != second.EquityCurve[i] {
			t.Fatalf("equity curves diverge at %d", i)
		}
	}
}

func TestMetricsZeroDenominators(t *testing.T) {
	e := testEngine(t, DefaultConfig())
	res, err := e.Run(&scriptedAgent{}, rallyBars())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// no trades: every ratio degrades to zero instead of faulting
	if res.WinRate != 0 || res.ProfitFactor != 0 || res.RecoveryFactor != 0 || res.CalmarRatio != 0 {
		t.Fatalf("zero-denominator metrics must default to 0: %+v", res)
	}
}

func TestTrainWindowExcludedFromSimulation(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	bars := mkBars(closes)

	cfg := DefaultConfig()
	cfg.TrainWindow = 30
	e := testEngine(t, cfg)
	res, err := e.Run(&scriptedAgent{}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// 60 bars minus 30 training, minus 20 warmup: 10 processed
	if len(res.EquityCurve) != 10+1 {
		t.Fatalf("expected 11 equity points, got %d", len(res.EquityCurve))
	}
}
