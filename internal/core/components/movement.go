package components

import (
	"github.com/jakecoffman/cp"

	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
)

// Movement integrates a position along a heading on every fixed step. The
// speed is the base speed evaluated through the speed tag group, so slows and
// hastes apply without the component knowing about them.
type Movement struct {
	host      *host.Host
	baseSpeed float64
	speed     float64

	Position cp.Vector
	heading  cp.Vector
}

var (
	_ host.Attacher          = (*Movement)(nil)
	_ lifecycle.FixedUpdater = (*Movement)(nil)
)

func NewMovement(baseSpeed float64) *Movement {
	return &Movement{baseSpeed: baseSpeed, speed: baseSpeed}
}

func (m *Movement) Attach(h *host.Host) {
	m.host = h
	m.speed = m.Speed()
}

// SetHeading normalizes dir; a zero vector stops the host.
func (m *Movement) SetHeading(dir cp.Vector) {
	if dir.Length() == 0 {
		m.heading = cp.Vector{}
		return
	}
	m.heading = dir.Normalize()
}

func (m *Movement) Heading() cp.Vector { return m.heading }

// Speed evaluates the current speed. Negative results clamp to zero.
func (m *Movement) Speed() float64 {
	if m.host == nil {
		return max(m.baseSpeed, 0)
	}
	return max(m.host.Stats().CalculatedValueOf(m.baseSpeed, TagSpeed), 0)
}

// LastSpeed is the speed used by the most recent fixed step.
func (m *Movement) LastSpeed() float64 { return m.speed }

func (m *Movement) FixedUpdate(dt float64) {
	m.speed = m.Speed()
	m.Position = m.Position.Add(m.heading.Mult(m.speed * dt))
}
