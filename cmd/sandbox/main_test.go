package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/config"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/stats"
)

func TestSandboxDefinitions(t *testing.T) {
	cfg, err := config.LoadFile("defs.yaml")
	require.NoError(t, err)
	require.Len(t, cfg.Hosts, 3)

	t.Run("Stacking Script Compiles", func(t *testing.T) {
		cfg.Strategy = config.Strategy{Kind: config.StrategyScript, Script: "stacking.tengo"}
		s, err := cfg.BuildStrategy(log.NewNop())
		require.NoError(t, err)

		c := stats.NewStats(stats.WithStrategy(s))
		c.AddStat(stats.New(16, stats.TierAdditive, components.TagHealth))
		assert.InDelta(t, 112.0, c.CalculatedValueOf(100, components.TagHealth), 1e-9)
	})

	t.Run("Runs", func(t *testing.T) {
		require.NoError(t, run("defs.yaml", false, 2, "silent"))
	})
}
