package components

import (
	"fmt"

	"github.com/zeusync/gameplay/internal/core/events/bus"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/lifecycle"
	"github.com/zeusync/gameplay/internal/core/observability/log"
)

const (
	EventHealthDamaged = "health.damaged"
	EventHealthHealed  = "health.healed"
	EventHealthDied    = "health.died"
)

// HealthEvent is the payload of every health.* event.
type HealthEvent struct {
	Amount  float64
	Current float64
	Max     float64
	Cause   string
}

// Health tracks hit points against a maximum derived from the Host's stats:
// the base maximum is evaluated through the health tag group on every read.
// Damage is reduced by the armor tag group.
type Health struct {
	host    *host.Host
	baseMax float64
	current float64
	dead    bool
}

var (
	_ host.Attacher         = (*Health)(nil)
	_ lifecycle.LateUpdater = (*Health)(nil)
)

// NewHealth starts at full health.
func NewHealth(baseMax float64) *Health {
	return &Health{baseMax: baseMax, current: baseMax}
}

func (c *Health) Attach(h *host.Host) {
	c.host = h
	c.current = c.Max()
}

// Max is the current maximum after stat aggregation.
func (c *Health) Max() float64 {
	if c.host == nil {
		return c.baseMax
	}
	return c.host.Stats().CalculatedValueOf(c.baseMax, TagHealth)
}

func (c *Health) Current() float64 { return c.current }
func (c *Health) Dead() bool       { return c.dead }

// Fraction is current over max, 0 when max is not positive.
func (c *Health) Fraction() float64 {
	m := c.Max()
	if m <= 0 {
		return 0
	}
	return c.current / m
}

// ApplyDamage subtracts amount, less armor, and publishes health.damaged and,
// on the killing blow, health.died. A panic raised by an event handler is
// recovered and returned.
func (c *Health) ApplyDamage(amount float64, cause string) error {
	if amount < 0 {
		return fmt.Errorf("%w: damage %v", ErrNegativeAmount, amount)
	}
	if c.host == nil {
		return ErrDetached
	}
	if c.dead {
		return nil
	}
	return lifecycle.Guard(c.host.Log(), "health.damage", func() {
		armor := c.host.Stats().CalculatedValueOf(0, TagArmor)
		dealt := max(amount-armor, 0)
		c.current = max(c.current-dealt, 0)
		c.publish(EventHealthDamaged, dealt, cause)
		if c.current == 0 {
			c.dead = true
			c.publish(EventHealthDied, dealt, cause)
			c.host.Log().Info("host died", log.String("cause", cause))
		}
	})
}

// Heal adds amount up to the maximum. The dead stay dead.
func (c *Health) Heal(amount float64, cause string) error {
	if amount < 0 {
		return fmt.Errorf("%w: heal %v", ErrNegativeAmount, amount)
	}
	if c.host == nil {
		return ErrDetached
	}
	if c.dead {
		return nil
	}
	return lifecycle.Guard(c.host.Log(), "health.heal", func() {
		before := c.current
		c.current = min(c.current+amount, c.Max())
		c.publish(EventHealthHealed, c.current-before, cause)
	})
}

// LateUpdate clamps current health after the maximum shrank this frame.
func (c *Health) LateUpdate(float64) {
	if m := c.Max(); c.current > m {
		c.current = max(m, 0)
	}
}

func (c *Health) publish(eventType string, amount float64, cause string) {
	b := c.host.Bus()
	if !b.HasSubscribers(eventType) {
		return
	}
	ev := bus.NewEvent(eventType, c.host.Name(), HealthEvent{
		Amount:  amount,
		Current: c.current,
		Max:     c.Max(),
		Cause:   cause,
	})
	if err := b.Publish(ev); err != nil {
		c.host.Log().Warn("health notification handler failed",
			log.String("event", eventType),
			log.Error(err),
		)
	}
}
