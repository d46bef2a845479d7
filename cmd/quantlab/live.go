package main

import (
	"github.com/spf13/cobra"

	"quantlab-go/internal/config"
	"quantlab-go/internal/feed"
	"quantlab-go/internal/market"
	"quantlab-go/internal/metrics"
	"quantlab-go/internal/util"
)

// maxLiveHistory caps the per-symbol bar history kept in memory.
const maxLiveHistory = 500

func liveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream live bars and log the agent's signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := util.NewLogger(cfg.App.LogLevel)

			if cfg.App.MetricsAddr != "" {
				_ = metrics.Serve(cfg.App.MetricsAddr)
				log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
			}

			ag := buildAgent(cfg, log)
			src := feed.New(cfg.Feed.Provider, cfg.Feed.Symbols, log,
				feed.WithPath(cfg.Feed.Path), feed.WithInterval(cfg.Feed.Interval))

			ctx := cmd.Context()
			bars := make(chan market.Bar, 256)
			go func() {
				if err := src.Run(ctx, bars); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("feed stopped")
				}
				close(bars)
			}()

			histories := make(map[string][]market.Bar)
			log.Info().Str("agent", ag.Name()).Msg("live signal loop started")
			for {
				select {
				case <-ctx.Done():
					log.Info().Msg("shutting down")
					return nil
				case bar, ok := <-bars:
					if !ok {
						return nil
					}
					h := append(histories[bar.Symbol], bar)
					if len(h) > maxLiveHistory {
						h = h[len(h)-maxLiveHistory:]
					}
					histories[bar.Symbol] = h

					sig := ag.Analyze(h)
					metrics.SignalsTotal.WithLabelValues(ag.Name(), sig.Type.String()).Inc()
					log.Info().Str("sym", bar.Symbol).Str("signal", sig.Type.String()).
						Float64("conf", sig.Confidence).Str("why", sig.Reasoning).Msg("signal")
				}
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config")
	return cmd
}
