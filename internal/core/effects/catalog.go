package effects

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/zeusync/gameplay/internal/core/config"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/status"
)

var (
	ErrUnknownEffect = errors.New("effects: unknown effect")
	ErrUnknownKind   = errors.New("effects: unknown effect kind")
)

// Factory builds one effect instance of a kind for target. The policy has
// already been resolved from the definition or the kind's default.
type Factory func(target *host.Host, def config.EffectDef, policy status.Policy) status.Effect

type kind struct {
	build  Factory
	policy status.Policy
}

// Catalog turns named effect definitions into fresh effect instances.
type Catalog struct {
	defs  map[string]config.EffectDef
	kinds map[string]kind
}

// NewCatalog knows the stock kinds burning, slow and haste.
func NewCatalog(defs map[string]config.EffectDef) *Catalog {
	c := &Catalog{
		defs:  maps.Clone(defs),
		kinds: make(map[string]kind),
	}
	if c.defs == nil {
		c.defs = make(map[string]config.EffectDef)
	}

	c.Register(string(TypeBurning), status.PolicyOverride, func(t *host.Host, d config.EffectDef, p status.Policy) status.Effect {
		return NewBurning(t, d.Duration, d.Param("dps", 1), p)
	})
	c.Register(string(TypeSlow), status.PolicyReplace, func(t *host.Host, d config.EffectDef, p status.Policy) status.Effect {
		return NewSlow(t, d.Duration, d.Param("amount", 0.5), p)
	})
	c.Register(string(TypeHaste), status.PolicyReplace, func(t *host.Host, d config.EffectDef, p status.Policy) status.Effect {
		return NewHaste(t, d.Duration, d.Param("bonus", 1), p)
	})
	return c
}

// Register adds or replaces a kind. defaultPolicy applies to definitions
// that list no policy flags.
func (c *Catalog) Register(name string, defaultPolicy status.Policy, f Factory) {
	c.kinds[name] = kind{build: f, policy: defaultPolicy}
}

// Define adds or replaces a named definition.
func (c *Catalog) Define(name string, def config.EffectDef) {
	c.defs[name] = def
}

// Names returns the defined effect names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.defs))
}

// Build creates a new instance of the named effect for target.
func (c *Catalog) Build(name string, target *host.Host) (status.Effect, error) {
	def, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	k, ok := c.kinds[def.Type]
	if !ok {
		return nil, fmt.Errorf("effect %q: %w: %q", name, ErrUnknownKind, def.Type)
	}
	policy := k.policy
	if len(def.Policy) > 0 {
		p, err := def.PolicyOf()
		if err != nil {
			return nil, fmt.Errorf("effect %q: %w", name, err)
		}
		policy = p
	}
	return k.build(target, def, policy), nil
}

// Apply builds the named effect and adds it to target.
func (c *Catalog) Apply(name string, target *host.Host) (bool, error) {
	e, err := c.Build(name, target)
	if err != nil {
		return false, err
	}
	return target.AddEffect(e), nil
}
