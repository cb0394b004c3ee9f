package host

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/gameplay/internal/core/events/bus"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/stats"
	"github.com/zeusync/gameplay/internal/core/status"
)

const (
	EventHostActivated   = "host.activated"
	EventHostDeactivated = "host.deactivated"
	EventHostDestroyed   = "host.destroyed"
)

// Host is one game object: the capability dispatcher its behaviors are
// registered with, its stat collection, its status effects and the event
// bus they all publish on.
//
// A Host is driven by exactly one goroutine at a time.
type Host struct {
	id   uuid.UUID
	name string

	bus      bus.EventBus
	registry *lifecycle.Registry
	stats    *stats.Stats
	resolver *status.Resolver
	log      log.Log

	active    bool
	destroyed bool
}

type config struct {
	log      log.Log
	bus      bus.EventBus
	strategy stats.StackingStrategy
	gate     *status.ResistanceGate
	inactive bool
}

type Option func(*config)

func WithLogger(l log.Log) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

func WithBus(b bus.EventBus) Option {
	return func(c *config) {
		if b != nil {
			c.bus = b
		}
	}
}

func WithStrategy(s stats.StackingStrategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

func WithResistanceGate(g *status.ResistanceGate) Option {
	return func(c *config) {
		c.gate = g
	}
}

// Inactive creates the Host disabled; SetActive(true) later fires on-enable.
func Inactive() Option {
	return func(c *config) {
		c.inactive = true
	}
}

func New(name string, opts ...Option) *Host {
	cfg := config{log: log.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bus == nil {
		cfg.bus = bus.New()
	}

	h := &Host{
		id:     uuid.New(),
		name:   name,
		bus:    cfg.bus,
		active: !cfg.inactive,
	}
	h.log = cfg.log.With(
		log.String("host", name),
		log.String("host_id", h.id.String()),
	)
	h.registry = lifecycle.NewRegistry(lifecycle.WithLogger(h.log))
	h.stats = stats.NewStats(
		stats.WithStrategy(cfg.strategy),
		stats.WithBus(h.bus, name),
		stats.WithLogger(h.log),
	)
	h.resolver = status.NewResolver(h.registry,
		status.WithGate(cfg.gate),
		status.WithBus(h.bus, name),
		status.WithLogger(h.log),
	)
	return h
}

func (h *Host) ID() uuid.UUID                 { return h.id }
func (h *Host) Name() string                  { return h.name }
func (h *Host) Bus() bus.EventBus             { return h.bus }
func (h *Host) Registry() *lifecycle.Registry { return h.registry }
func (h *Host) Stats() *stats.Stats           { return h.stats }
func (h *Host) Resolver() *status.Resolver    { return h.resolver }
func (h *Host) Log() log.Log                  { return h.log }
func (h *Host) Active() bool                  { return h.active }
func (h *Host) Destroyed() bool               { return h.destroyed }

// Register adds a behavior to the Host's dispatcher. Behaviors that need the
// Host implement Attacher and are attached first. Registration on a
// destroyed Host fails.
func (h *Host) Register(b lifecycle.Behavior) bool {
	if h.destroyed || !lifecycle.IsValid(b) {
		return false
	}
	if a, ok := b.(Attacher); ok {
		a.Attach(h)
	}
	return h.registry.Register(b)
}

// Unregister removes a behavior, firing its pre-destroy hook. Effects must
// be removed through the resolver instead.
func (h *Host) Unregister(b lifecycle.Behavior) bool {
	return h.registry.Unregister(b)
}

// AddEffect is a shortcut for Resolver().AddEffect.
func (h *Host) AddEffect(e status.Effect) bool {
	if h.destroyed {
		return false
	}
	return h.resolver.AddEffect(e)
}

// DispatchFrame runs one phase on the Host. Inactive and destroyed Hosts are
// skipped.
func (h *Host) DispatchFrame(phase lifecycle.Phase, dt float64) {
	if !h.active || h.destroyed {
		return
	}
	h.registry.DispatchFrame(phase, dt)
}

// SetActive toggles the Host. Each transition broadcasts on-enable or
// on-disable once; setting the current state again does nothing.
func (h *Host) SetActive(active bool) {
	if h.destroyed || h.active == active {
		return
	}
	h.active = active
	if active {
		h.registry.Broadcast(lifecycle.CapEnable)
		h.publish(EventHostActivated)
	} else {
		h.registry.Broadcast(lifecycle.CapDisable)
		h.publish(EventHostDeactivated)
	}
}

// Destroy broadcasts destroy-queued, cancels pending immunity expiries,
// removes every status effect, then unregisters the remaining behaviors
// newest first so each pre-destroy fires once. Calling it again does nothing.
func (h *Host) Destroy() {
	if h.destroyed {
		return
	}
	h.registry.Broadcast(lifecycle.CapDestroyQueued)
	h.resolver.StopImmunities()
	h.resolver.Clear()

	members := h.registry.Members()
	for _, b := range slices.Backward(members) {
		h.registry.Unregister(b)
	}
	h.destroyed = true
	h.active = false
	h.publish(EventHostDestroyed)
	h.log.Debug("host destroyed", log.Int("behaviors", len(members)))
}

func (h *Host) publish(eventType string) {
	if !h.bus.HasSubscribers(eventType) {
		return
	}
	if err := h.bus.Publish(bus.NewEvent(eventType, h.name, h)); err != nil {
		h.log.Warn("host notification handler failed",
			log.String("event", eventType),
			log.Error(err),
		)
	}
}

// Attacher is implemented by behaviors that keep a reference to their Host.
type Attacher interface {
	Attach(h *Host)
}

// Find returns the first registered behavior of type T.
func Find[T any](h *Host) (T, bool) {
	for _, b := range h.registry.Members() {
		if v, ok := b.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
