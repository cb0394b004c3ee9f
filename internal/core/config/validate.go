package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/stats"
	"github.com/zeusync/gameplay/internal/core/status"
)

const (
	StrategyTiered = "tiered"
	StrategyCached = "cached"
	StrategyScript = "script"
)

var (
	ErrInvalidValue  = errors.New("config: invalid value")
	ErrDuplicateName = errors.New("config: duplicate name")
	ErrUnknownStat   = errors.New("config: unknown stat")
	ErrUnknownEffect = errors.New("config: unknown effect")
	ErrUnknownTag    = errors.New("config: unknown tag")
)

// Validate checks the whole file and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		add(fmt.Errorf("log_level: %w", err))
	}
	if c.Loop.FrameStep <= 0 {
		add(fmt.Errorf("%w: loop.frame_step must be positive", ErrInvalidValue))
	}
	if c.Loop.FixedStep <= 0 {
		add(fmt.Errorf("%w: loop.fixed_step must be positive", ErrInvalidValue))
	}
	if c.Loop.MaxFixedSteps < 1 {
		add(fmt.Errorf("%w: loop.max_fixed_steps must be at least 1", ErrInvalidValue))
	}
	if c.Loop.Workers < 0 {
		add(fmt.Errorf("%w: loop.workers must not be negative", ErrInvalidValue))
	}

	switch c.Strategy.Kind {
	case StrategyTiered, StrategyCached:
	case StrategyScript:
		if c.Strategy.Script == "" {
			add(fmt.Errorf("%w: strategy.script is required for kind %q", ErrInvalidValue, StrategyScript))
		}
	default:
		add(fmt.Errorf("strategy.kind: %w: %q", stats.ErrUnknownStrategy, c.Strategy.Kind))
	}

	seen := make(map[string]bool, len(c.Stats))
	for i, s := range c.Stats {
		if s.Name == "" {
			add(fmt.Errorf("%w: stats[%d] has no name", ErrInvalidValue, i))
		} else if seen[s.Name] {
			add(fmt.Errorf("%w: stat %q", ErrDuplicateName, s.Name))
		}
		seen[s.Name] = true
		if _, err := s.Build(); err != nil {
			add(fmt.Errorf("stats[%d]: %w", i, err))
		}
	}

	for name, e := range c.Effects {
		if e.Type == "" {
			add(fmt.Errorf("%w: effect %q has no type", ErrInvalidValue, name))
		}
		if e.Duration < 0 {
			add(fmt.Errorf("%w: effect %q has a negative duration", ErrInvalidValue, name))
		}
		if _, err := status.ParsePolicy(e.Policy...); err != nil {
			add(fmt.Errorf("effect %q: %w", name, err))
		}
	}

	add(validateResistances("resistances", c.Resistances))

	hosts := make(map[string]bool, len(c.Hosts))
	for i, h := range c.Hosts {
		if h.Name == "" {
			add(fmt.Errorf("%w: hosts[%d] has no name", ErrInvalidValue, i))
		} else if hosts[h.Name] {
			add(fmt.Errorf("%w: host %q", ErrDuplicateName, h.Name))
		}
		hosts[h.Name] = true
		for _, s := range h.Stats {
			if !seen[s] {
				add(fmt.Errorf("host %q: %w %q", h.Name, ErrUnknownStat, s))
			}
		}
		for _, e := range h.Effects {
			if _, ok := c.Effects[e]; !ok {
				add(fmt.Errorf("host %q: %w %q", h.Name, ErrUnknownEffect, e))
			}
		}
		add(validateResistances("host "+strconv.Quote(h.Name)+" resistances", h.Resistances))
		for t, d := range h.Immunities {
			if d <= 0 {
				add(fmt.Errorf("%w: host %q immunity %q must be positive", ErrInvalidValue, h.Name, t))
			}
		}
	}

	return errors.Join(errs...)
}

func validateResistances(where string, m map[string]float64) error {
	var errs []error
	for t, f := range m {
		if f < 0 || f > 1 {
			errs = append(errs, fmt.Errorf("%w: %s: factor for %q must be in [0, 1], got %v", ErrInvalidValue, where, t, f))
		}
	}
	return errors.Join(errs...)
}

// ParseTag accepts a stock tag name ("health", "speed", ...) or a positive
// number.
func ParseTag(s string) (stats.Tag, error) {
	s = strings.TrimSpace(s)
	if t, ok := components.TagNames[strings.ToLower(s)]; ok {
		return t, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}
	return stats.Tag(n), nil
}

// Build creates the stat described by d. An empty tier means base.
func (d StatDef) Build() (*stats.Stat, error) {
	tier := stats.TierBase
	if d.Tier != "" {
		t, err := stats.ParseTier(d.Tier)
		if err != nil {
			return nil, err
		}
		tier = t
	}
	op, err := stats.ParsePwnOp(d.Pwn)
	if err != nil {
		return nil, err
	}
	tags := make([]stats.Tag, 0, len(d.Tags))
	for _, s := range d.Tags {
		t, err := ParseTag(s)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return stats.Named(d.Name, d.Value, tier, tags...).WithPwnOp(op), nil
}

// PolicyOf parses the effect's policy flags. Validate has already rejected
// unknown flags for loaded files.
func (d EffectDef) PolicyOf() (status.Policy, error) {
	return status.ParsePolicy(d.Policy...)
}

// Param returns a named parameter or def when it is absent.
func (d EffectDef) Param(name string, def float64) float64 {
	if v, ok := d.Params[name]; ok {
		return v
	}
	return def
}
