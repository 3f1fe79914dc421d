package surface

import (
	"time"

	"github.com/dshills/hoverintent/internal/geom"
)

// Kind identifies the type of a surface event.
type Kind uint8

const (
	// KindNone is the zero Kind.
	KindNone Kind = iota
	// KindOver fires on the topmost element under the pointer when it changes.
	// It bubbles to ancestors and then to surface-level listeners.
	KindOver
	// KindEnter fires on each element the pointer enters. Does not bubble.
	KindEnter
	// KindLeave fires on each element the pointer leaves. Does not bubble.
	KindLeave
	// KindMove fires on surface-level listeners for every pointer sample.
	KindMove
	// KindScroll fires on surface-level listeners when the scroll offset changes.
	KindScroll
	// KindSignal wraps a bus signal delivered to a listener.
	KindSignal
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindOver:
		return "over"
	case KindEnter:
		return "enter"
	case KindLeave:
		return "leave"
	case KindMove:
		return "move"
	case KindScroll:
		return "scroll"
	case KindSignal:
		return "signal"
	default:
		return "none"
	}
}

// Event is a pointer, scroll or signal event.
type Event struct {
	// Kind is the event type.
	Kind Kind

	// Target is the element the event was dispatched at.
	// Nil for surface-level scroll and signal events.
	Target *Element

	// CurrentTarget is the element whose listener is running.
	// Nil while surface-level listeners run.
	CurrentTarget *Element

	// Position is the pointer position in viewport coordinates.
	Position geom.Point

	// ScrollY is the vertical scroll offset at dispatch time.
	ScrollY float64

	// Time is when the event was created.
	Time time.Time

	// Synthetic is true for events re-dispatched by the host or by intent
	// replay rather than produced by the pointer.
	Synthetic bool

	// Name is the signal topic for KindSignal events.
	Name string

	prevented bool
}

// PreventDefault marks the event as handled by the listener.
// Intent tracking skips its default follow-on behavior for that path.
func (e *Event) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// Replay returns a synthetic copy of e suitable for re-dispatch.
// The copy is not prevented and carries the given time.
func (e *Event) Replay(at time.Time) *Event {
	c := *e
	c.CurrentTarget = nil
	c.Synthetic = true
	c.Time = at
	c.prevented = false
	return &c
}

// Fork returns a copy of e with the prevented flag cleared.
func (e *Event) Fork() *Event {
	c := *e
	c.prevented = false
	return &c
}

// Listener handles a surface event.
type Listener func(evt *Event)

type listener struct {
	fn      Listener
	removed bool
}
