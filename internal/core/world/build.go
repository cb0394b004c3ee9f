package world

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/config"
	"github.com/zeusync/gameplay/internal/core/effects"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/status"
)

// FromConfig creates a world with the loop settings of cfg and populates it.
func FromConfig(cfg *config.Config, l log.Log) (*World, error) {
	opts := []Option{
		WithLogger(l),
		WithFixedStep(cfg.Loop.FixedStep, cfg.Loop.MaxFixedSteps),
	}
	if cfg.Loop.ParallelHosts {
		opts = append(opts, WithParallel(cfg.Loop.Workers))
	}
	w := New(opts...)
	if err := w.Populate(cfg, effects.NewCatalog(cfg.Effects), l); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Populate builds every host defined in cfg and adds it to the world. A
// host gets the stock components it has numbers for, its stats, the global
// and per-host resistances, its immunities and finally its effects.
func (w *World) Populate(cfg *config.Config, catalog *effects.Catalog, l log.Log) error {
	if l == nil {
		l = log.NewNop()
	}
	for _, def := range cfg.Hosts {
		h, err := w.buildHost(cfg, def, catalog, l)
		if err != nil {
			return fmt.Errorf("world: host %q: %w", def.Name, err)
		}
		if err := w.Add(h); err != nil {
			h.Destroy()
			return err
		}
	}
	return nil
}

func (w *World) buildHost(cfg *config.Config, def config.HostDef, catalog *effects.Catalog, l log.Log) (*host.Host, error) {
	strategy, err := cfg.BuildStrategy(l)
	if err != nil {
		return nil, err
	}
	h := host.New(def.Name, host.WithLogger(l), host.WithStrategy(strategy))
	if err := w.equipHost(h, cfg, def, catalog); err != nil {
		h.Destroy()
		return nil, err
	}
	return h, nil
}

func (w *World) equipHost(h *host.Host, cfg *config.Config, def config.HostDef, catalog *effects.Catalog) error {
	for _, name := range def.Stats {
		sd, ok := cfg.Stat(name)
		if !ok {
			return fmt.Errorf("%w %q", config.ErrUnknownStat, name)
		}
		s, err := sd.Build()
		if err != nil {
			return err
		}
		h.Stats().AddStat(s)
	}

	if def.Health > 0 {
		h.Register(components.NewHealth(def.Health))
	}
	if def.Speed > 0 {
		h.Register(components.NewMovement(def.Speed))
	}
	if def.Cooldown > 0 {
		h.Register(components.NewAttackTimer(def.Cooldown, nil))
	}

	applyResistances(h, cfg, def)
	for _, t := range slices.Sorted(maps.Keys(def.Immunities)) {
		if _, err := h.Resolver().GrantImmunity(status.LogicalType(t), def.Immunities[t], w); err != nil {
			return err
		}
	}

	for _, name := range def.Effects {
		if _, err := catalog.Apply(name, h); err != nil {
			return err
		}
	}
	return nil
}

// Reload applies a changed definitions file to a running world. Hosts that
// are no longer defined are removed and new ones are built. Hosts that stay
// get the new stacking strategy and resistances: undefined resistances are
// removed, running immunities are kept. Their components, stats and present
// effects are left alone. Call it from the loop goroutine, e.g. through Post.
func (w *World) Reload(cfg *config.Config, catalog *effects.Catalog, l log.Log) error {
	if l == nil {
		l = log.NewNop()
	}
	var errs []error
	for _, h := range w.Hosts() {
		if _, ok := cfg.Host(h.Name()); !ok {
			errs = append(errs, w.Remove(h.Name()))
		}
	}
	for _, def := range cfg.Hosts {
		h, ok := w.Host(def.Name)
		if !ok {
			nh, err := w.buildHost(cfg, def, catalog, l)
			if err == nil {
				if err = w.Add(nh); err != nil {
					nh.Destroy()
				}
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("world: host %q: %w", def.Name, err))
			}
			continue
		}
		strategy, err := cfg.BuildStrategy(l)
		if err != nil {
			errs = append(errs, fmt.Errorf("world: host %q: %w", def.Name, err))
			continue
		}
		h.Stats().SetStrategy(strategy)
		applyResistances(h, cfg, def)
	}
	w.log.Info("definitions reloaded", log.Int("hosts", w.Len()))
	return errors.Join(errs...)
}

// applyResistances sets the global resistances overlaid with the host's own
// and removes any other resistance except running immunities.
func applyResistances(h *host.Host, cfg *config.Config, def config.HostDef) {
	resistances := maps.Clone(cfg.Resistances)
	if resistances == nil {
		resistances = make(map[string]float64)
	}
	maps.Copy(resistances, def.Resistances)

	gate := h.Resolver().Gate()
	for _, t := range gate.Types() {
		if _, ok := resistances[string(t)]; !ok && !gate.Immune(t) {
			h.Resolver().RemoveResistance(t)
		}
	}
	for _, t := range slices.Sorted(maps.Keys(resistances)) {
		h.Resolver().AddResistance(status.LogicalType(t), resistances[t])
	}
}
