package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by explicit calls to Advance.
// Callbacks run synchronously inside Advance, in deadline order.
// Timers with equal deadlines fire in the order they were scheduled.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Time
	seq     uint64
	fn      func()
	done    bool
	stopped bool
}

// NewManual creates a manual clock starting at start.
// A zero start uses a fixed, arbitrary epoch.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Manual{now: start}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn to run d after the current virtual time.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves virtual time forward by d, running every callback whose
// deadline falls within the interval. Callbacks may schedule further timers;
// those also run if they fall due before the end of the interval.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	end := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(end)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	if m.now.Before(end) {
		m.now = end
	}
	m.mu.Unlock()
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// nextDue pops the earliest live timer due at or before end and moves the
// clock to its deadline.
func (m *Manual) nextDue(end time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		a, b := m.timers[i], m.timers[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})

	t := m.timers[0]
	if t.at.After(end) {
		return nil
	}
	m.timers = m.timers[1:]
	t.done = true
	if t.at.After(m.now) {
		m.now = t.at
	}
	return t
}

// Stop removes the timer from the queue.
func (t *manualTimer) Stop() bool {
	m := t.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
	return true
}
