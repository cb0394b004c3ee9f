package lifecycle

import "fmt"

// Behavior is any value owned by a Host that opts into zero or more
// lifecycle capabilities by implementing the interfaces below. There is no
// base type to embed; membership is decided by probing at registration.
type Behavior = any

// Updater runs once per frame in the update phase.
type Updater interface {
	Update(dt float64)
}

// FixedUpdater runs once per fixed simulation step.
type FixedUpdater interface {
	FixedUpdate(dt float64)
}

// LateUpdater runs after every Updater of the frame.
type LateUpdater interface {
	LateUpdate(dt float64)
}

// Enabler is notified when its Host becomes active.
type Enabler interface {
	OnEnable()
}

// Disabler is notified when its Host becomes inactive.
type Disabler interface {
	OnDisable()
}

// PreDestroyer is invoked exactly once while the behavior is being
// unregistered. The behavior is still registered during the call.
type PreDestroyer interface {
	PreDestroy()
}

// DestroyQueuer is notified when its Host has been queued for destruction,
// before any PreDestroy hook runs.
type DestroyQueuer interface {
	OnDestroyQueued()
}

// Capability identifies one lifecycle contract.
type Capability uint8

const (
	CapUpdate Capability = iota
	CapFixedUpdate
	CapLateUpdate
	CapEnable
	CapDisable
	CapPreDestroy
	CapDestroyQueued

	capCount
)

func (c Capability) String() string {
	switch c {
	case CapUpdate:
		return "update"
	case CapFixedUpdate:
		return "fixed-update"
	case CapLateUpdate:
		return "late-update"
	case CapEnable:
		return "on-enable"
	case CapDisable:
		return "on-disable"
	case CapPreDestroy:
		return "pre-destroy"
	case CapDestroyQueued:
		return "destroy-queued"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// CapabilitySet is a bitmask of capabilities.
type CapabilitySet uint8

func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<c) != 0
}

func (s CapabilitySet) with(c Capability) CapabilitySet {
	return s | 1<<c
}

// Each calls fn for every capability in the set, in declaration order.
func (s CapabilitySet) Each(fn func(Capability)) {
	for c := Capability(0); c < capCount; c++ {
		if s.Has(c) {
			fn(c)
		}
	}
}

// Phase is a per-frame dispatch phase.
type Phase uint8

const (
	PhaseUpdate Phase = iota
	PhaseFixedUpdate
	PhaseLateUpdate
)

func (p Phase) String() string {
	return p.Capability().String()
}

// Capability returns the capability whose list the phase walks.
func (p Phase) Capability() Capability {
	switch p {
	case PhaseFixedUpdate:
		return CapFixedUpdate
	case PhaseLateUpdate:
		return CapLateUpdate
	default:
		return CapUpdate
	}
}

// Probe reports which capabilities b implements.
func Probe(b Behavior) CapabilitySet {
	var set CapabilitySet
	if _, ok := b.(Updater); ok {
		set = set.with(CapUpdate)
	}
	if _, ok := b.(FixedUpdater); ok {
		set = set.with(CapFixedUpdate)
	}
	if _, ok := b.(LateUpdater); ok {
		set = set.with(CapLateUpdate)
	}
	if _, ok := b.(Enabler); ok {
		set = set.with(CapEnable)
	}
	if _, ok := b.(Disabler); ok {
		set = set.with(CapDisable)
	}
	if _, ok := b.(PreDestroyer); ok {
		set = set.with(CapPreDestroy)
	}
	if _, ok := b.(DestroyQueuer); ok {
		set = set.with(CapDestroyQueued)
	}
	return set
}
