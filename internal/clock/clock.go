// Package clock provides the timer abstraction used by hover-intent tracking.
//
// Intent tracking is cooperative and single threaded: every pointer event and
// every timer callback runs to completion before the next one starts. A
// Scheduler therefore guarantees that callbacks passed to AfterFunc run on the
// same logical thread that dispatches pointer events. Manual advances virtual
// time explicitly for tests. Posted wraps a host's own event loop, which is
// how the terminal backends keep timers on their dispatch goroutine.
//
// A Timer that has been stopped never fires, even if its deadline already
// passed and the callback was queued behind other work.
package clock

import "time"

// Scheduler schedules future callbacks on the dispatch thread.
type Scheduler interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc arranges for fn to run after d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running.
	// Returns false if the callback already ran or the timer was stopped.
	Stop() bool
}

// Stop stops t if it is non-nil.
func Stop(t Timer) {
	if t != nil {
		t.Stop()
	}
}
