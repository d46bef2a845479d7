package backtest

import (
	"math"
	"time"

	"quantlab-go/internal/indicators"
	"quantlab-go/internal/market"
)

// Results aggregates everything one run produced: trade statistics, return
// and risk metrics, the equity curve, and the closed-trade list. It is built
// once at the end of a run and read-only afterwards. Every ratio defaults to
// 0 instead of faulting when its denominator is zero.
type Results struct {
	RunID string `json:"run_id"`
	Agent string `json:"agent"`

	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	TotalReturn         float64 `json:"total_return"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`

	AvgWin              float64 `json:"avg_win"`
	AvgLoss             float64 `json:"avg_loss"`
	LargestWin          float64 `json:"largest_win"`
	LargestLoss         float64 `json:"largest_loss"`
	AvgTradeDurationHrs float64 `json:"avg_trade_duration_hours"`

	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	ProfitFactor   float64 `json:"profit_factor"`
	RecoveryFactor float64 `json:"recovery_factor"`
	CalmarRatio    float64 `json:"calmar_ratio"`

	EquityCurve []float64 `json:"equity_curve"`
	Trades      []Trade   `json:"trades"`
}

const riskFreeRate = 0.02

// buildResults rolls the run state up into the aggregate report.
// firstProcessed is the index into sim of the first bar the engine acted on,
// -1 when none were.
func (e *Engine) buildResults(runID, agentName string, sim []market.Bar, firstProcessed int) *Results {
	r := &Results{
		RunID:          runID,
		Agent:          agentName,
		InitialCapital: e.cfg.InitialCapital,
		FinalCapital:   e.capital,
		EquityCurve:    e.equity,
	}
	if firstProcessed >= 0 {
		r.StartTime = sim[firstProcessed].Timestamp
		r.EndTime = sim[len(sim)-1].Timestamp
	}

	r.Trades = make([]Trade, len(e.closed))
	for i, t := range e.closed {
		r.Trades[i] = *t
	}

	e.fillTradeStats(r)
	e.fillReturns(r)
	e.fillRiskMetrics(r)
	return r
}

func (e *Engine) fillTradeStats(r *Results) {
	var winSum, lossSum, durationHrs float64
	for _, t := range r.Trades {
		r.TotalTrades++
		durationHrs += t.ExitTime.Sub(t.EntryTime).Hours()
		if t.PnL > 0 {
			r.WinningTrades++
			winSum += t.PnL
			if t.PnL > r.LargestWin {
				r.LargestWin = t.PnL
			}
		} else {
			r.LosingTrades++
			lossSum += t.PnL
			if t.PnL < r.LargestLoss {
				r.LargestLoss = t.PnL
			}
		}
	}
	if r.TotalTrades > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades)
		r.AvgTradeDurationHrs = durationHrs / float64(r.TotalTrades)
	}
	if r.WinningTrades > 0 {
		r.AvgWin = winSum / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = lossSum / float64(r.LosingTrades)
	}
	if lossSum < 0 {
		r.ProfitFactor = winSum / -lossSum
	}
}

func (e *Engine) fillReturns(r *Results) {
	r.TotalReturn = r.FinalCapital - r.InitialCapital
	r.TotalReturnPct = r.TotalReturn / r.InitialCapital * 100

	days := r.EndTime.Sub(r.StartTime).Hours() / 24
	if years := days / 365.25; years > 0 && r.FinalCapital > 0 {
		r.AnnualizedReturnPct = (math.Pow(r.FinalCapital/r.InitialCapital, 1/years) - 1) * 100
	}
}

func (e *Engine) fillRiskMetrics(r *Results) {
	returns := make([]float64, 0, len(r.EquityCurve))
	for i := 1; i < len(r.EquityCurve); i++ {
		if r.EquityCurve[i-1] != 0 {
			returns = append(returns, r.EquityCurve[i]/r.EquityCurve[i-1]-1)
		}
	}

	r.Volatility = indicators.StdDev(returns) * math.Sqrt(252)
	excess := indicators.Mean(returns)*252 - riskFreeRate
	if r.Volatility != 0 {
		r.SharpeRatio = excess / r.Volatility
	}

	var downside []float64
	for _, ret := range returns {
		if ret < 0 {
			downside = append(downside, ret)
		}
	}
	if dd := indicators.StdDev(downside) * math.Sqrt(252); dd != 0 {
		r.SortinoRatio = excess / dd
	}

	peak := math.Inf(-1)
	for _, eq := range r.EquityCurve {
		if eq > peak {
			peak = eq
		}
		if dd := peak - eq; dd > r.MaxDrawdown {
			r.MaxDrawdown = dd
			if peak != 0 {
				r.MaxDrawdownPct = dd / peak * 100
			}
		}
	}

	if r.MaxDrawdown != 0 {
		r.RecoveryFactor = r.TotalReturn / r.MaxDrawdown
	}
	if r.MaxDrawdownPct != 0 {
		r.CalmarRatio = r.AnnualizedReturnPct / r.MaxDrawdownPct
	}
}
