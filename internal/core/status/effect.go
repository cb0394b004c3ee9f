package status

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LogicalType identifies the "kind" of an effect. Two effects with the same
// logical type collide in AddEffect.
type LogicalType string

// Policy is the conflict policy of an incoming effect against a Present one
// of the same logical type. The bits are always evaluated in the order
// Override, Remove, Add.
type Policy uint8

const (
	PolicyAdd Policy = 1 << iota
	PolicyOverride
	PolicyRemove
)

// PolicyIgnore rejects the incoming effect when one is already Present.
const PolicyIgnore Policy = 0

// PolicyReplace removes the Present effect and adds the incoming one.
const PolicyReplace = PolicyRemove | PolicyAdd

func (p Policy) Has(flag Policy) bool {
	return p&flag != 0
}

func (p Policy) String() string {
	if p == PolicyIgnore {
		return "ignore"
	}
	var parts []string
	if p.Has(PolicyOverride) {
		parts = append(parts, "override")
	}
	if p.Has(PolicyRemove) {
		parts = append(parts, "remove")
	}
	if p.Has(PolicyAdd) {
		parts = append(parts, "add")
	}
	return strings.Join(parts, "|")
}

// ParsePolicy combines flag names ("add", "override", "remove", "replace",
// "ignore") into a Policy.
func ParsePolicy(flags ...string) (Policy, error) {
	var p Policy
	for _, f := range flags {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "add", "stack":
			p |= PolicyAdd
		case "override", "refresh":
			p |= PolicyOverride
		case "remove":
			p |= PolicyRemove
		case "replace":
			p |= PolicyReplace
		case "ignore", "":
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, f)
		}
	}
	return p, nil
}

// Effect is a status effect. Besides these two methods an effect may
// implement any lifecycle capability (Update, PreDestroy, ...) and the
// optional hooks below; the resolver registers it with the Host's
// dispatcher while it is Present.
//
// Effects are identified by reference and must be pointers.
type Effect interface {
	LogicalType() LogicalType
	Policy() Policy
}

// Adder is called when the effect becomes Present, before its capabilities
// are registered.
type Adder interface {
	OnAdd()
}

// Overrider is called on the Present effect when an incoming effect with the
// Override bit collides with it.
type Overrider interface {
	OnOverride(incoming Effect)
}

// Resistible effects are told about a partial resistance (0 < factor < 1)
// of their logical type when they are added.
type Resistible interface {
	ApplyResistance(factor float64)
}

// binder is satisfied by every type embedding Base.
type binder interface {
	bind(r *Resolver, self Effect)
	unbind()
}

// Base carries the identity every effect needs. Embed it by value and
// construct it with NewBase.
type Base struct {
	kind   LogicalType
	policy Policy
	id     uuid.UUID

	resolver *Resolver
	self     Effect
}

func NewBase(kind LogicalType, policy Policy) Base {
	return Base{kind: kind, policy: policy, id: uuid.New()}
}

func (b *Base) LogicalType() LogicalType { return b.kind }
func (b *Base) Policy() Policy           { return b.policy }
func (b *Base) ID() uuid.UUID            { return b.id }

// Resolver returns the resolver the effect is Present in, or nil.
func (b *Base) Resolver() *Resolver { return b.resolver }

// Present reports whether the effect is currently Present on a Host.
func (b *Base) Present() bool { return b.resolver != nil }

// Remove takes the effect off its Host through the resolver's normal remove
// path. It returns false when the effect is not Present.
func (b *Base) Remove() bool {
	if b.resolver == nil || b.self == nil {
		return false
	}
	return b.resolver.RemoveEffect(b.self)
}

func (b *Base) bind(r *Resolver, self Effect) {
	b.resolver = r
	b.self = self
}

func (b *Base) unbind() {
	b.resolver = nil
	b.self = nil
}
