package report

import (
	"fmt"
	"strings"

	"quantlab-go/internal/backtest"
	"quantlab-go/internal/ensemble"
)

// Summary renders a plain-text results block for terminal output.
func Summary(res *backtest.Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Backtest %s (%s)\n", res.RunID, res.Agent)
	fmt.Fprintf(&b, "  period          %s → %s\n",
		res.StartTime.Format("2006-01-02"), res.EndTime.Format("2006-01-02"))
	fmt.Fprintf(&b, "  capital         %.2f → %.2f (%+.2f%%)\n",
		res.InitialCapital, res.FinalCapital, res.TotalReturnPct)
	fmt.Fprintf(&b, "  annualized      %+.2f%%\n", res.AnnualizedReturnPct)
	fmt.Fprintf(&b, "  trades          %d (win rate %.1f%%)\n", res.TotalTrades, res.WinRate*100)
	fmt.Fprintf(&b, "  avg win/loss    %+.2f / %+.2f\n", res.AvgWin, res.AvgLoss)
	fmt.Fprintf(&b, "  largest w/l     %+.2f / %+.2f\n", res.LargestWin, res.LargestLoss)
	fmt.Fprintf(&b, "  sharpe/sortino  %.2f / %.2f\n", res.SharpeRatio, res.SortinoRatio)
	fmt.Fprintf(&b, "  max drawdown    %.2f (%.2f%%)\n", res.MaxDrawdown, res.MaxDrawdownPct)
	fmt.Fprintf(&b, "  profit factor   %.2f  calmar %.2f\n", res.ProfitFactor, res.CalmarRatio)
	return b.String()
}

// RankingsTable renders the ensemble accuracy view for terminal output.
func RankingsTable(rows []ensemble.Ranking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %8s %8s %12s %7s %s\n", "member", "accuracy", "samples", "pnl", "weight", "active")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-20s %7.1f%% %8d %12.2f %7.2f %v\n",
			r.Name, r.Accuracy*100, r.Outcomes, r.CumulativePnL, r.Weight, r.Active)
	}
	return b.String()
}
