package lifecycle

import (
	"reflect"
	"slices"

	"github.com/zeusync/gameplay/internal/core/observability/log"
)

type member struct {
	caps       CapabilitySet
	destroying bool
}

// Registry is one Host's capability-indexed dispatcher. For every capability
// it keeps the behaviors implementing it in registration order; DispatchFrame
// walks the list of one phase.
//
// A Registry is not safe for concurrent use. It is driven by the single frame
// loop goroutine that owns its Host.
type Registry struct {
	lists   [capCount][]Behavior
	members map[Behavior]*member
	all     []Behavior

	scratch [capCount][]Behavior
	busy    [capCount]bool

	log log.Log
}

type Option func(*Registry)

func WithLogger(l log.Log) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		members: make(map[Behavior]*member),
		log:     log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register probes b once and appends it to the list of every capability it
// implements. Nil values, typed nils and non-pointer values are rejected and
// Register returns false.
//
// Registering the same behavior twice is not detected: it is appended again
// and will be invoked once per registration in every phase it supports.
// Registering a behavior from inside its own PreDestroy returns false; the
// pending Unregister removes it regardless.
func (r *Registry) Register(b Behavior) bool {
	if !valid(b) {
		r.log.Debug("behavior rejected", log.String("type", typeName(b)))
		return false
	}
	if m, ok := r.members[b]; ok && m.destroying {
		r.log.Debug("behavior rejected while being destroyed", log.String("type", typeName(b)))
		return false
	}

	caps := Probe(b)
	if m, ok := r.members[b]; ok {
		m.caps |= caps
	} else {
		r.members[b] = &member{caps: caps}
	}
	r.all = append(r.all, b)
	caps.Each(func(c Capability) {
		r.lists[c] = append(r.lists[c], b)
	})
	return true
}

// Unregister removes b from every list it is in. A PreDestroyer gets its hook
// called once, synchronously, before removal; re-entrant Unregister calls for
// the same behavior from inside the hook return false. Unregistering a
// behavior that is not registered returns false and calls nothing.
func (r *Registry) Unregister(b Behavior) bool {
	if !valid(b) {
		return false
	}
	m, ok := r.members[b]
	if !ok || m.destroying {
		return false
	}

	m.destroying = true
	if m.caps.Has(CapPreDestroy) {
		b.(PreDestroyer).PreDestroy()
	}

	m.caps.Each(func(c Capability) {
		r.lists[c] = removeAll(r.lists[c], b)
	})
	r.all = removeAll(r.all, b)
	delete(r.members, b)
	return true
}

// Contains reports whether b is currently registered.
func (r *Registry) Contains(b Behavior) bool {
	if !valid(b) {
		return false
	}
	_, ok := r.members[b]
	return ok
}

// Capabilities returns the capability set cached for b at registration.
func (r *Registry) Capabilities(b Behavior) (CapabilitySet, bool) {
	if !valid(b) {
		return 0, false
	}
	m, ok := r.members[b]
	if !ok {
		return 0, false
	}
	return m.caps, true
}

// Len returns the number of entries in a capability list.
func (r *Registry) Len(c Capability) int {
	if c >= capCount {
		return 0
	}
	return len(r.lists[c])
}

// Members returns every registered behavior in registration order.
func (r *Registry) Members() []Behavior {
	return slices.Clone(r.all)
}

// DispatchFrame invokes the phase method on every member of the phase's
// list in registration order. It walks a snapshot taken on entry: behaviors
// unregistered earlier in the same phase are skipped, behaviors registered
// during the phase first run on the next call.
//
// Panics raised by a behavior propagate to the caller.
func (r *Registry) DispatchFrame(phase Phase, dt float64) {
	c := phase.Capability()
	snap, pooled := r.snapshot(c)
	defer r.release(c, snap, pooled)

	for _, b := range snap {
		if _, ok := r.members[b]; !ok {
			continue
		}
		switch c {
		case CapUpdate:
			b.(Updater).Update(dt)
		case CapFixedUpdate:
			b.(FixedUpdater).FixedUpdate(dt)
		case CapLateUpdate:
			b.(LateUpdater).LateUpdate(dt)
		}
	}
}

// Broadcast invokes a notification capability (on-enable, on-disable,
// destroy-queued) on its members in registration order, with the same
// snapshot rules as DispatchFrame. Pre-destroy is only ever fired by
// Unregister; Broadcast returns false for it and for the frame phases.
func (r *Registry) Broadcast(c Capability) bool {
	switch c {
	case CapEnable, CapDisable, CapDestroyQueued:
	default:
		return false
	}

	snap, pooled := r.snapshot(c)
	defer r.release(c, snap, pooled)

	for _, b := range snap {
		if _, ok := r.members[b]; !ok {
			continue
		}
		switch c {
		case CapEnable:
			b.(Enabler).OnEnable()
		case CapDisable:
			b.(Disabler).OnDisable()
		case CapDestroyQueued:
			b.(DestroyQueuer).OnDestroyQueued()
		}
	}
	return true
}

// snapshot copies a capability list into the reusable scratch buffer, or into
// a fresh slice when the same capability is already being walked further up
// the stack.
func (r *Registry) snapshot(c Capability) ([]Behavior, bool) {
	if r.busy[c] {
		return slices.Clone(r.lists[c]), false
	}
	r.busy[c] = true
	r.scratch[c] = append(r.scratch[c][:0], r.lists[c]...)
	return r.scratch[c], true
}

func (r *Registry) release(c Capability, snap []Behavior, pooled bool) {
	if !pooled {
		return
	}
	clear(snap)
	r.busy[c] = false
}

func removeAll(list []Behavior, b Behavior) []Behavior {
	n := 0
	for _, v := range list {
		if v != b {
			list[n] = v
			n++
		}
	}
	clear(list[n:])
	return list[:n]
}

// IsValid reports whether b can be registered: a non-nil pointer.
func IsValid(b Behavior) bool {
	return valid(b)
}

func valid(b Behavior) bool {
	if b == nil {
		return false
	}
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Pointer && !v.IsNil()
}

func typeName(b Behavior) string {
	if b == nil {
		return "nil"
	}
	return reflect.TypeOf(b).String()
}
