// Package throttle provides a trailing-edge rate limiter.
//
// The first call in a quiet window fires immediately. Calls arriving less
// than the wait interval after the last firing are collapsed into a single
// deferred call that always carries the most recent argument; each new call
// reschedules it. The last call of a burst is never dropped.
package throttle

import (
	"time"

	"github.com/dshills/hoverintent/internal/clock"
)

// Throttle rate-limits calls to a function of one argument.
// It is not safe for concurrent use; call it from the dispatch thread.
type Throttle[T any] struct {
	sched clock.Scheduler
	wait  time.Duration
	fn    func(T)

	last     time.Time
	hasLast  bool
	deferred clock.Timer
}

// New returns a throttle that invokes fn at most once per wait.
func New[T any](sched clock.Scheduler, wait time.Duration, fn func(T)) *Throttle[T] {
	return &Throttle[T]{
		sched: sched,
		wait:  wait,
		fn:    fn,
	}
}

// Call invokes fn now, or defers it if the last firing was within wait.
func (t *Throttle[T]) Call(v T) {
	now := t.sched.Now()

	if t.hasLast && now.Before(t.last.Add(t.wait)) {
		clock.Stop(t.deferred)
		t.deferred = t.sched.AfterFunc(t.wait, func() {
			t.deferred = nil
			t.last = t.sched.Now()
			t.fn(v)
		})
		return
	}

	t.last = now
	t.hasLast = true
	t.fn(v)
}

// Pending reports whether a deferred call is scheduled.
func (t *Throttle[T]) Pending() bool {
	return t.deferred != nil
}

// Cancel drops any deferred call.
func (t *Throttle[T]) Cancel() {
	clock.Stop(t.deferred)
	t.deferred = nil
}
