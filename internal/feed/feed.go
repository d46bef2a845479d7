// Package feed hosts the bar sources the engine's callers draw from: CSV
// files for historical runs, a deterministic stub, and a live websocket
// stream. The backtest core itself never performs I/O.
package feed

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quantlab-go/internal/market"
	"quantlab-go/internal/metrics"
)

const (
	// ProviderCSV reads bars from a CSV file on disk.
	ProviderCSV = "csv"
	// ProviderStub emits deterministic synthetic bars (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams live klines from Binance public websockets.
	ProviderBinance = "binance"
)

// Feed represents a pluggable bar stream implementation.
type Feed struct {
	provider string
	symbols  []string
	path     string
	interval string
	log      zerolog.Logger
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithPath points file-based providers at their source.
func WithPath(path string) Option {
	return func(f *Feed) { f.path = path }
}

// WithInterval overrides the kline interval for streaming providers.
func WithInterval(interval string) Option {
	return func(f *Feed) {
		if interval != "" {
			f.interval = interval
		}
	}
}

// New builds a feed for the named provider.
func New(provider string, symbols []string, log zerolog.Logger, opts ...Option) *Feed {
	f := &Feed{
		provider: strings.ToLower(strings.TrimSpace(provider)),
		symbols:  symbols,
		interval: "1m",
		log:      log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run streams bars into out until the context is cancelled or the source is
// exhausted.
func (f *Feed) Run(ctx context.Context, out chan<- market.Bar) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	case ProviderCSV:
		return f.runCSV(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

// runStub emits a deterministic sine-wave price path, one bar per tick.
func (f *Feed) runStub(ctx context.Context, out chan<- market.Bar) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px := 100 + 5*math.Sin(float64(i)/10)
			i++
			for _, s := range f.symbols {
				bar := market.Bar{
					Timestamp: ts,
					Open:      px,
					High:      px * 1.001,
					Low:       px * 0.999,
					Close:     px,
					Volume:    1000,
					Symbol:    s,
				}
				select {
				case out <- bar:
					metrics.BarsTotal.WithLabelValues(s).Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
