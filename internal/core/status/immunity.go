package status

import (
	"time"

	"github.com/zeusync/gameplay/internal/core/observability/log"
)

// Poster hands a function to the goroutine that owns the Host. The world
// queue implements it.
type Poster interface {
	Post(fn func())
}

// GrantImmunity installs full resistance to t for d of wall-clock time. The
// expiry is posted back through p so the gate is only touched by the frame
// loop. An immunity overwritten in the meantime (by AddResistance or a newer
// grant) is left alone when the old timer fires.
//
// The returned stop function cancels the pending expiry; the resistance then
// stays until removed explicitly. Like the rest of the resolver it must be
// called from the loop goroutine.
func (r *Resolver) GrantImmunity(t LogicalType, d time.Duration, p Poster) (stop func() bool, err error) {
	if p == nil {
		return nil, ErrNoPoster
	}
	gen := r.gate.setImmunity(t)
	r.resistanceChanged(t)

	r.timers[gen] = time.AfterFunc(d, func() {
		p.Post(func() {
			if _, pending := r.timers[gen]; !pending {
				return
			}
			delete(r.timers, gen)
			if r.gate.removeGeneration(t, gen) {
				r.publish(EventResistanceChanged, ResistanceEvent{Type: t, Removed: true})
				r.log.Debug("immunity expired", log.String("type", string(t)))
			}
		})
	})
	return func() bool {
		timer, ok := r.timers[gen]
		if !ok {
			return false
		}
		delete(r.timers, gen)
		return timer.Stop()
	}, nil
}

// StopImmunities cancels every pending immunity expiry and returns how many
// were pending. The resistances themselves stay. Host.Destroy calls it so no
// expiry is posted for a destroyed host.
func (r *Resolver) StopImmunities() int {
	n := len(r.timers)
	for gen, timer := range r.timers {
		timer.Stop()
		delete(r.timers, gen)
	}
	return n
}
