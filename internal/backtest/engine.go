package backtest

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quantlab-go/internal/agent"
	"quantlab-go/internal/execution"
	"quantlab-go/internal/market"
	"quantlab-go/internal/metrics"
	"quantlab-go/internal/risk"
	"quantlab-go/internal/signal"
)

// warmupBars is the minimum bar index before the engine starts acting on
// signals, so agents always see a usable lookback.
const warmupBars = 20

// minConfidence gates signal execution: weaker signals are ignored.
const minConfidence = 0.5

// Engine simulates one agent over one bar history. It exclusively owns its
// mutable run state; concurrent backtests need separate instances, and a
// single instance must be Reset before reuse.
type Engine struct {
	cfg    Config
	limits risk.Limits
	sim    execution.Simulator
	log    zerolog.Logger

	capital float64
	open    []*Trade
	closed  []*Trade
	equity  []float64
	used    bool
}

// NewEngine validates the configuration and builds an idle engine. This is
// the only place configuration errors surface.
func NewEngine(cfg Config, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest config: %w", err)
	}
	e := &Engine{
		cfg: cfg,
		limits: risk.Limits{
			MaxPositions:  cfg.MaxPositions,
			StopLossPct:   cfg.StopLossPct,
			TakeProfitPct: cfg.TakeProfitPct,
		},
		sim: execution.NewSimulator(cfg.Slippage, cfg.Commission),
		log: log,
	}
	e.Reset()
	return e, nil
}

// Reset zeroes all mutable run state so the engine can be reused. Two
// sequential runs on a reset engine over the same inputs produce identical
// results.
func (e *Engine) Reset() {
	e.capital = e.cfg.InitialCapital
	e.open = nil
	e.closed = nil
	e.equity = nil
	e.used = false
}

// Run drives the agent over the bars and returns the aggregate results. The
// leading TrainWindow bars, when configured and smaller than the history, are
// handed to Train and excluded from simulation.
func (e *Engine) Run(ag agent.Agent, bars []market.Bar) (*Results, error) {
	if e.used {
		return nil, fmt.Errorf("engine state is dirty: call Reset before reusing it")
	}
	e.used = true
	runID := uuid.NewString()

	sim := bars
	if e.cfg.TrainWindow > 0 && e.cfg.TrainWindow < len(bars) {
		e.log.Debug().Int("bars", e.cfg.TrainWindow).Str("agent", ag.Name()).Msg("training agent")
		ag.Train(bars[:e.cfg.TrainWindow])
		sim = bars[e.cfg.TrainWindow:]
	}

	e.equity = append(e.equity, e.capital)

	firstProcessed := -1
	for i := warmupBars; i < len(sim); i++ {
		bar := sim[i]
		if firstProcessed < 0 {
			firstProcessed = i
		}

		e.checkExits(bar)

		sig := ag.Analyze(sim[:i+1])
		metrics.SignalsTotal.WithLabelValues(ag.Name(), sig.Type.String()).Inc()
		e.execute(sig, bar)

		e.equity = append(e.equity, e.markToMarket(bar.Close))
	}

	// force-close whatever is still open at the end of the data
	if len(sim) > 0 {
		last := sim[len(sim)-1]
		for _, t := range e.open {
			e.closeTrade(t, last, e.sim.ExitPrice(last.Close), ExitEndOfData)
		}
		e.open = nil
	}

	metrics.RunsTotal.Inc()
	res := e.buildResults(runID, ag.Name(), sim, firstProcessed)
	e.log.Info().Str("run", runID).Str("agent", ag.Name()).
		Int("trades", res.TotalTrades).Float64("return_pct", res.TotalReturnPct).
		Msg("backtest complete")
	return res, nil
}

// checkExits closes open trades whose stop-loss or take-profit level was
// breached intrabar, detected against the bar's low and high.
func (e *Engine) checkExits(bar market.Bar) {
	var still []*Trade
	for _, t := range e.open {
		stop := e.limits.StopPrice(t.EntryPrice)
		take := e.limits.TakePrice(t.EntryPrice)
		switch {
		case stop > 0 && bar.Low <= stop:
			e.closeTrade(t, bar, e.sim.ExitPrice(stop), ExitStopLoss)
		case take > 0 && bar.High >= take:
			e.closeTrade(t, bar, e.sim.ExitPrice(take), ExitTakeProfit)
		default:
			still = append(still, t)
		}
	}
	e.open = still
}

// execute acts on a signal: confident buys open a long when the position
// limit allows, confident sells flatten every open long, holds do nothing.
func (e *Engine) execute(sig signal.Signal, bar market.Bar) {
	switch {
	case sig.IsBuy() && sig.Confidence > minConfidence:
		if !e.limits.AllowOpen(len(e.open)) {
			return
		}
		entry := e.sim.EntryPrice(bar.Close)
		qty := e.sim.Quantity(e.capital, e.cfg.PositionSize, entry)
		if qty == 0 {
			return
		}
		commission := e.sim.Commission(qty, entry)
		e.capital -= commission
		t := newTrade(bar.Symbol, bar.Timestamp, entry, qty, commission)
		e.open = append(e.open, t)
		e.log.Debug().Str("trade", t.ID).Float64("px", entry).Float64("qty", qty).Msg("opened long")

	case sig.IsSell() && sig.Confidence > minConfidence:
		for _, t := range e.open {
			e.closeTrade(t, bar, e.sim.ExitPrice(bar.Close), ExitSignal)
		}
		e.open = nil
	}
}

func (e *Engine) closeTrade(t *Trade, bar market.Bar, exitPrice float64, reason ExitReason) {
	e.capital += t.close(bar.Timestamp, exitPrice, e.sim.Commission(t.Quantity, exitPrice), reason)
	e.closed = append(e.closed, t)
	metrics.TradesTotal.WithLabelValues(string(t.Side), string(reason)).Inc()
	e.log.Debug().Str("trade", t.ID).Str("reason", string(reason)).
		Float64("px", exitPrice).Float64("pnl", t.PnL).Msg("closed long")
}

// markToMarket is realized capital plus unrealized P&L of open positions.
func (e *Engine) markToMarket(price float64) float64 {
	equity := e.capital
	for _, t := range e.open {
		equity += t.Unrealized(price)
	}
	return equity
}

// OpenPositions reports how many trades are currently open; mainly for tests.
func (e *Engine) OpenPositions() int { return len(e.open) }
