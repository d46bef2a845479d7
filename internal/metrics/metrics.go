// Package metrics exposes prometheus instrumentation for feeds, agents, and
// backtest runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_total", Help: "Count of market bars ingested"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals emitted by agents"},
		[]string{"agent", "type"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Trades closed by the backtest engine"},
		[]string{"side", "reason"},
	)
	RunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "backtest_runs_total", Help: "Completed backtest runs"},
	)
)

func init() {
	prometheus.MustRegister(BarsTotal, SignalsTotal, TradesTotal, RunsTotal)
}

// Serve starts a background HTTP server exposing /metrics.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
