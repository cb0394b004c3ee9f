package status

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/gameplay/internal/core/events/bus"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
	"github.com/zeusync/gameplay/internal/core/observability/log"
)

const (
	EventEffectAdded       = "effect.added"
	EventEffectRemoved     = "effect.removed"
	EventEffectOverridden  = "effect.overridden"
	EventEffectRejected    = "effect.rejected"
	EventResistanceChanged = "resistance.changed"
)

// Reasons carried by EffectEvent for effect.rejected.
const (
	ReasonResisted  = "resisted"
	ReasonIgnored   = "ignored"
	ReasonDuplicate = "duplicate"
	ReasonInvalid   = "invalid"
)

// EffectEvent is the payload of every effect.* event. Incoming is only set on
// effect.overridden, Reason only on effect.rejected.
type EffectEvent struct {
	Type     LogicalType
	Effect   Effect
	Incoming Effect
	Reason   string
}

// ResistanceEvent is the payload of resistance.changed. Removed is set when
// the entry was deleted rather than installed.
type ResistanceEvent struct {
	Type    LogicalType
	Factor  float64
	Removed bool
}

// Resolver decides what happens when an effect is added to a Host that may
// already carry one of the same logical type, and keeps the Host's effect
// set, its resistance gate and its dispatcher consistent.
//
// For every logical type the resolver keeps the Present effects in the order
// they were added; "the Present effect" of a type is the oldest one.
//
// Like the Registry it drives, a Resolver belongs to one frame loop goroutine.
type Resolver struct {
	registry *lifecycle.Registry
	gate     *ResistanceGate

	present  map[LogicalType][]Effect
	order    []Effect
	removing map[Effect]struct{}
	timers   map[uint64]*time.Timer

	bus    bus.EventBus
	source string
	log    log.Log
}

type Option func(*Resolver)

// WithBus publishes effect.* and resistance.changed events on b.
func WithBus(b bus.EventBus, source string) Option {
	return func(r *Resolver) {
		r.bus = b
		r.source = source
	}
}

func WithLogger(l log.Log) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithGate shares an existing gate instead of creating a new one.
func WithGate(g *ResistanceGate) Option {
	return func(r *Resolver) {
		if g != nil {
			r.gate = g
		}
	}
}

// NewResolver binds a resolver to the Host's registry. Present effects are
// registered there for as long as they stay Present.
func NewResolver(registry *lifecycle.Registry, opts ...Option) *Resolver {
	if registry == nil {
		registry = lifecycle.NewRegistry()
	}
	r := &Resolver{
		registry: registry,
		gate:     NewResistanceGate(),
		present:  make(map[LogicalType][]Effect),
		removing: make(map[Effect]struct{}),
		timers:   make(map[uint64]*time.Timer),
		log:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddEffect applies e to the Host and reports whether e is Present
// afterwards.
//
// A fully resisted type is refused. With no Present effect of the same type
// e is attached. Otherwise the incoming policy is evaluated against the
// oldest Present effect in the fixed order Override, Remove, Add: the
// Present effect's OnOverride runs first, then it is removed, then e is
// attached. PolicyIgnore refuses e.
func (r *Resolver) AddEffect(e Effect) bool {
	if !lifecycle.IsValid(e) {
		r.log.Debug("effect rejected", log.String("reason", ReasonInvalid))
		return false
	}
	t := e.LogicalType()

	if r.gate.Blocks(t) {
		r.reject(e, ReasonResisted)
		return false
	}
	if r.isPresent(e) {
		r.reject(e, ReasonDuplicate)
		return false
	}

	existing := r.present[t]
	if len(existing) == 0 {
		r.attach(e)
		return true
	}

	old := existing[0]
	p := e.Policy()
	if p == PolicyIgnore {
		r.reject(e, ReasonIgnored)
		return false
	}

	if p.Has(PolicyOverride) {
		if o, ok := old.(Overrider); ok {
			o.OnOverride(e)
		}
		r.publish(EventEffectOverridden, EffectEvent{Type: t, Effect: old, Incoming: e})
		r.log.Debug("effect overridden",
			log.String("type", string(t)),
			log.String("effect", effectID(old)),
		)
	}
	if p.Has(PolicyRemove) {
		r.RemoveEffect(old)
	}
	if !p.Has(PolicyAdd) {
		return false
	}
	// a hook above may have granted resistance
	if r.gate.Blocks(t) {
		r.reject(e, ReasonResisted)
		return false
	}
	r.attach(e)
	return true
}

// RemoveEffect takes e off the Host: its PreDestroy hook runs while it is
// still Present, then it leaves the dispatcher and the effect set. It returns
// false for effects that are not Present and for nested removals of an
// effect already being removed.
func (r *Resolver) RemoveEffect(e Effect) bool {
	if !lifecycle.IsValid(e) || !r.isPresent(e) {
		return false
	}
	if _, busy := r.removing[e]; busy {
		return false
	}
	r.removing[e] = struct{}{}
	defer delete(r.removing, e)

	r.registry.Unregister(e)

	t := e.LogicalType()
	if list := deleteEffect(r.present[t], e); len(list) == 0 {
		delete(r.present, t)
	} else {
		r.present[t] = list
	}
	r.order = deleteEffect(r.order, e)
	if b, ok := e.(binder); ok {
		b.unbind()
	}

	r.publish(EventEffectRemoved, EffectEvent{Type: t, Effect: e})
	r.log.Debug("effect removed",
		log.String("type", string(t)),
		log.String("effect", effectID(e)),
	)
	return true
}

// AddResistance installs or overwrites the factor for t. A factor of 1
// immediately removes every Present effect of t.
func (r *Resolver) AddResistance(t LogicalType, factor float64) {
	r.gate.Set(t, factor)
	r.resistanceChanged(t)
}

// RemoveResistance deletes the entry for t. Effects refused earlier are not
// re-applied.
func (r *Resolver) RemoveResistance(t LogicalType) bool {
	if !r.gate.Remove(t) {
		return false
	}
	r.publish(EventResistanceChanged, ResistanceEvent{Type: t, Removed: true})
	return true
}

// Contains reports whether an effect of type t is Present.
func (r *Resolver) Contains(t LogicalType) bool {
	return len(r.present[t]) > 0
}

// ContainsEffect reports whether e itself is Present.
func (r *Resolver) ContainsEffect(e Effect) bool {
	return lifecycle.IsValid(e) && r.isPresent(e)
}

// Effect returns the oldest Present effect of type t.
func (r *Resolver) Effect(t LogicalType) (Effect, bool) {
	list := r.present[t]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Effects returns the Present effects of type t, oldest first.
func (r *Resolver) Effects(t LogicalType) []Effect {
	return slices.Clone(r.present[t])
}

// All returns every Present effect in the order it became Present.
func (r *Resolver) All() []Effect {
	return slices.Clone(r.order)
}

func (r *Resolver) Len() int {
	return len(r.order)
}

// Clear removes every Present effect, newest first.
func (r *Resolver) Clear() {
	for i := len(r.order) - 1; i >= 0; i-- {
		if i < len(r.order) {
			r.RemoveEffect(r.order[i])
		}
	}
}

func (r *Resolver) Gate() *ResistanceGate {
	return r.gate
}

func (r *Resolver) Registry() *lifecycle.Registry {
	return r.registry
}

func (r *Resolver) attach(e Effect) {
	t := e.LogicalType()
	if f, ok := r.gate.Factor(t); ok && f > 0 {
		if rs, ok := e.(Resistible); ok {
			rs.ApplyResistance(f)
		}
	}
	if b, ok := e.(binder); ok {
		b.bind(r, e)
	}
	r.present[t] = append(r.present[t], e)
	r.order = append(r.order, e)

	if a, ok := e.(Adder); ok {
		a.OnAdd()
	}
	// OnAdd may already have removed it
	if !r.isPresent(e) {
		return
	}
	r.registry.Register(e)

	r.publish(EventEffectAdded, EffectEvent{Type: t, Effect: e})
	r.log.Debug("effect added",
		log.String("type", string(t)),
		log.String("effect", effectID(e)),
	)
}

func (r *Resolver) resistanceChanged(t LogicalType) {
	f, _ := r.gate.Factor(t)
	r.publish(EventResistanceChanged, ResistanceEvent{Type: t, Factor: f})
	if f < 1 {
		return
	}
	for _, e := range slices.Clone(r.present[t]) {
		r.RemoveEffect(e)
	}
}

func (r *Resolver) reject(e Effect, reason string) {
	r.publish(EventEffectRejected, EffectEvent{Type: e.LogicalType(), Effect: e, Reason: reason})
	r.log.Debug("effect rejected",
		log.String("type", string(e.LogicalType())),
		log.String("reason", reason),
	)
}

func (r *Resolver) isPresent(e Effect) bool {
	return slices.Contains(r.present[e.LogicalType()], e)
}

func (r *Resolver) publish(eventType string, data any) {
	if r.bus == nil || !r.bus.HasSubscribers(eventType) {
		return
	}
	if err := r.bus.Publish(bus.NewEvent(eventType, r.source, data)); err != nil {
		r.log.Warn("effect notification handler failed",
			log.String("event", eventType),
			log.Error(err),
		)
	}
}

func deleteEffect(list []Effect, e Effect) []Effect {
	i := slices.Index(list, e)
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}

func effectID(e Effect) string {
	if id, ok := e.(interface{ ID() uuid.UUID }); ok {
		return id.ID().String()
	}
	return string(e.LogicalType())
}
