package clock

import (
	"sync/atomic"
	"time"
)

// Poster queues fn for execution on a dispatch thread. It returns false if
// the work was dropped.
type Poster func(fn func()) bool

// Posted returns a real-time Scheduler whose callbacks are delivered through
// post. Hosts with their own event loop use it to keep timers on that loop.
func Posted(post Poster) Scheduler {
	return posted(post)
}

type posted Poster

func (p posted) Now() time.Time {
	return time.Now()
}

func (p posted) AfterFunc(d time.Duration, fn func()) Timer {
	return postAfter(Poster(p), d, fn)
}

func postAfter(post Poster, d time.Duration, fn func()) Timer {
	t := &postedTimer{}
	t.timer = time.AfterFunc(d, func() {
		post(func() {
			if t.fired.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type postedTimer struct {
	timer *time.Timer
	fired atomic.Bool
}

// Stop prevents the callback from running, including when it is already queued.
func (t *postedTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}
