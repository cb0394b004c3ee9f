package status

// Terminator lets a countdown effect veto its own expiry. OnCountdownEnd is
// called on every tick where the countdown has run out; returning false keeps
// the effect Present and it is asked again on the next tick.
type Terminator interface {
	OnCountdownEnd() bool
}

// Countdown is a Base with a timer. When Current reaches zero in Update the
// effect removes itself, unless it implements Terminator and vetoes.
//
// Types embedding Countdown that declare their own Update must call
// Countdown.Update to keep the timer running.
type Countdown struct {
	Base

	Current float64
	Start   float64
}

func NewCountdown(kind LogicalType, policy Policy, start float64) Countdown {
	return Countdown{
		Base:    NewBase(kind, policy),
		Current: start,
		Start:   start,
	}
}

// Update decrements the timer by dt and removes the effect once it has run
// out. Detached countdowns only tick.
func (c *Countdown) Update(dt float64) {
	c.Current -= dt
	if c.Current > 0 {
		return
	}
	c.Current = 0
	if c.self == nil {
		return
	}
	if t, ok := c.self.(Terminator); ok && !t.OnCountdownEnd() {
		return
	}
	c.Remove()
}

// Reset restarts the timer from Start.
func (c *Countdown) Reset() {
	c.Current = c.Start
}

// Expired reports whether the timer has run out.
func (c *Countdown) Expired() bool {
	return c.Current <= 0
}

// Elapsed is the fraction of the duration already spent, in [0, 1].
func (c *Countdown) Elapsed() float64 {
	if c.Start <= 0 {
		return 1
	}
	f := 1 - c.Current/c.Start
	return min(max(f, 0), 1)
}

// ApplyResistance shortens the duration by the resisted fraction.
func (c *Countdown) ApplyResistance(factor float64) {
	scale := 1 - clampFactor(factor)
	c.Start *= scale
	c.Current *= scale
}

// OnOverride refreshes the timer. Types embedding Countdown may shadow it.
func (c *Countdown) OnOverride(Effect) {
	c.Reset()
}
