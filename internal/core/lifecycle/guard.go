package lifecycle

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/zeusync/gameplay/internal/core/observability/log"
)

// ErrRecovered wraps a panic caught by Guard.
var ErrRecovered = errors.New("lifecycle: recovered panic")

// Guard runs fn and turns a panic into a logged error. It is meant for
// consumer-level operations such as applying damage, where one faulty
// behavior must not abort the frame. DispatchFrame itself is never guarded.
func Guard(l log.Log, op string, fn func()) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if e, ok := rec.(error); ok {
			err = fmt.Errorf("%w in %s: %w", ErrRecovered, op, e)
		} else {
			err = fmt.Errorf("%w in %s: %v", ErrRecovered, op, rec)
		}
		if l != nil {
			l.Error("operation failed",
				log.String("op", op),
				log.Error(err),
				log.String("stack", string(debug.Stack())),
			)
		}
	}()
	fn()
	return nil
}
