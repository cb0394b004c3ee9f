package config

import (
	"fmt"
	"os"

	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/stats"
)

// BuildStrategy creates a fresh stacking strategy for one host. Cached and
// script strategies keep per-host state, so every host needs its own.
func (c *Config) BuildStrategy(l log.Log) (stats.StackingStrategy, error) {
	switch c.Strategy.Kind {
	case "", StrategyTiered:
		return stats.TieredStrategy{}, nil
	case StrategyCached:
		return stats.NewCachedStrategy(stats.TieredStrategy{}), nil
	case StrategyScript:
		path := c.Path(c.Strategy.Script)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read stacking script %s: %w", path, err)
		}
		ss, err := stats.NewScriptStrategy(src, stats.WithScriptLogger(l))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return ss, nil
	default:
		return nil, fmt.Errorf("%w: %q", stats.ErrUnknownStrategy, c.Strategy.Kind)
	}
}
