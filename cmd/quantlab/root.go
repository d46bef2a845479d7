package main

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"quantlab-go/internal/agent"
	"quantlab-go/internal/config"
	"quantlab-go/internal/ensemble"
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{Use: "quantlab", Short: "Strategy backtesting and signal ensemble CLI", SilenceUsage: true}
	root.AddCommand(runCmd(), liveCmd())
	return root.ExecuteContext(ctx)
}

// buildAgent assembles either the configured single agent or the ensemble
// over its member modes.
func buildAgent(cfg *config.Config, log zerolog.Logger) agent.Agent {
	params := agentParams(cfg.Agent.Params)

	var rng *rand.Rand
	if cfg.Agent.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Agent.Seed))
	}

	if !cfg.Ensemble.Enabled {
		return agent.Build(cfg.Agent.Mode, params, rng)
	}

	members := cfg.Ensemble.Members
	if len(members) == 0 {
		members = []string{"meanrev", "momentum", "volmomentum"}
	}
	agents := make([]agent.Agent, len(members))
	for i, mode := range members {
		agents[i] = agent.Build(mode, params, rng)
	}
	return ensemble.New(ensemble.ParsePolicy(cfg.Ensemble.Policy), log, agents...)
}

func agentParams(p config.AgentParams) agent.Params {
	return agent.Params{
		Lookback:       p.Lookback,
		EntryThreshold: p.EntryThreshold,
		ExitThreshold:  p.ExitThreshold,
		ShortPeriod:    p.ShortPeriod,
		LongPeriod:     p.LongPeriod,
		RSIPeriod:      p.RSIPeriod,
		MinCorrelation: p.MinCorrelation,
		MinHalfLife:    p.MinHalfLife,
		MaxHalfLife:    p.MaxHalfLife,
		TargetVol:      p.TargetVol,
		Epsilon:        p.Epsilon,
		LearningRate:   p.LearningRate,
	}
}
