package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantlab-go/internal/backtest"
	"quantlab-go/internal/config"
	"quantlab-go/internal/ensemble"
	"quantlab-go/internal/feed"
	"quantlab-go/internal/report"
	"quantlab-go/internal/util"
)

func runCmd() *cobra.Command {
	var (
		configPath string
		barsPath   string
		symbol     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest the configured agent or ensemble over a CSV bar history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := util.NewLogger(cfg.App.LogLevel)

			if barsPath == "" {
				barsPath = cfg.Feed.Path
			}
			if symbol == "" && len(cfg.Feed.Symbols) > 0 {
				symbol = cfg.Feed.Symbols[0]
			}
			bars, err := feed.LoadCSV(barsPath, symbol)
			if err != nil {
				return err
			}
			log.Info().Int("bars", len(bars)).Str("symbol", symbol).Msg("loaded history")

			ag := buildAgent(cfg, log)
			engine, err := backtest.NewEngine(cfg.Backtest, log)
			if err != nil {
				return err
			}

			res, err := engine.Run(ag, bars)
			if err != nil {
				return err
			}
			fmt.Print(report.Summary(res))

			if agg, ok := ag.(*ensemble.Aggregator); ok {
				fmt.Print(report.RankingsTable(agg.Rankings()))
			}

			if cfg.Report.ResultsPath != "" {
				rec, err := report.NewJSONLRecorder(cfg.Report.ResultsPath)
				if err != nil {
					return err
				}
				defer rec.Close()
				if err := rec.Record(res); err != nil {
					return err
				}
				log.Info().Str("path", cfg.Report.ResultsPath).Msg("results recorded")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config")
	cmd.Flags().StringVar(&barsPath, "bars", "", "CSV bar history (overrides feed.path)")
	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol label for the history")
	return cmd
}
