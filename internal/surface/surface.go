package surface

import (
	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/event"
	"github.com/dshills/hoverintent/internal/geom"
)

// Surface is a retained tree of elements receiving pointer input.
//
// It turns raw pointer samples into boundary events (leave, over, enter),
// move events and scroll events, and provides the lookups intent tracking
// needs: elements by ID, viewport bounding boxes and hover state.
//
// A Surface is not safe for concurrent use. All calls must come from the
// thread that runs its Scheduler callbacks.
type Surface struct {
	sched   clock.Scheduler
	signals *event.Bus

	width  float64
	height float64

	roots []*Element
	byID  map[string]*Element
	known map[*Element]struct{}

	listeners map[Kind][]*listener

	hovered    []*Element // deepest first
	pointer    geom.Point
	hasPointer bool
	scrollY    float64
}

// Option configures a Surface.
type Option func(*Surface)

// WithSize sets the viewport size.
func WithSize(width, height float64) Option {
	return func(s *Surface) {
		s.width = width
		s.height = height
	}
}

// WithBus sets the signal bus shared with other surfaces.
func WithBus(b *event.Bus) Option {
	return func(s *Surface) {
		if b != nil {
			s.signals = b
		}
	}
}

// New creates an empty surface driven by sched.
func New(sched clock.Scheduler, opts ...Option) *Surface {
	s := &Surface{
		sched:     sched,
		width:     80,
		height:    24,
		byID:      make(map[string]*Element),
		known:     make(map[*Element]struct{}),
		listeners: make(map[Kind][]*listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.signals == nil {
		s.signals = event.NewBus()
	}
	return s
}

// Scheduler returns the scheduler driving the surface.
func (s *Surface) Scheduler() clock.Scheduler {
	return s.sched
}

// Signals returns the signal bus.
func (s *Surface) Signals() *event.Bus {
	return s.signals
}

// Size returns the viewport size.
func (s *Surface) Size() (width, height float64) {
	return s.width, s.height
}

// Resize changes the viewport size.
func (s *Surface) Resize(width, height float64) {
	s.width = width
	s.height = height
}

// Append attaches child under parent, or at the top level when parent is nil.
// Later children are drawn, and hit, above earlier ones.
func (s *Surface) Append(parent, child *Element) *Element {
	if child.parent != nil || child.attached {
		s.Remove(child)
	}
	if parent == nil {
		s.roots = append(s.roots, child)
	} else {
		child.parent = parent
		parent.children = append(parent.children, child)
	}
	if parent == nil || parent.attached {
		s.attach(child)
	}
	return child
}

func (s *Surface) attach(el *Element) {
	el.surface = s
	el.attached = true
	s.known[el] = struct{}{}
	if el.ID != "" {
		s.byID[el.ID] = el
	}
	for _, c := range el.children {
		s.attach(c)
	}
}

// Remove detaches el and its descendants.
// No leave events are dispatched; detached elements report a zero bounding box.
func (s *Surface) Remove(el *Element) {
	if p := el.parent; p != nil {
		p.children = removeElement(p.children, el)
		el.parent = nil
	} else {
		s.roots = removeElement(s.roots, el)
	}
	s.detach(el)

	kept := s.hovered[:0]
	for _, h := range s.hovered {
		if h.attached {
			kept = append(kept, h)
		}
	}
	s.hovered = kept
}

func (s *Surface) detach(el *Element) {
	el.attached = false
	if el.ID != "" && s.byID[el.ID] == el {
		delete(s.byID, el.ID)
	}
	for _, c := range el.children {
		s.detach(c)
	}
}

func removeElement(list []*Element, el *Element) []*Element {
	for i, other := range list {
		if other == el {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Lookup returns the attached element with the given ID, or nil.
func (s *Surface) Lookup(id string) *Element {
	if id == "" {
		return nil
	}
	return s.byID[id]
}

// Elements returns every attached element in z-order (parents before children).
func (s *Surface) Elements() []*Element {
	var out []*Element
	var walk func(list []*Element)
	walk = func(list []*Element) {
		for _, el := range list {
			out = append(out, el)
			walk(el.children)
		}
	}
	walk(s.roots)
	return out
}

// BoundingBox returns el's bounds in viewport coordinates.
// Detached or hidden elements yield the zero Rect.
func (s *Surface) BoundingBox(el *Element) geom.Rect {
	if el == nil || !el.attached || el.surface != s || el.Hidden() {
		return geom.Rect{}
	}
	if el.isFixed() {
		return el.bounds
	}
	return el.bounds.Offset(geom.Pt(0, -s.scrollY))
}

// ElementAt returns the topmost visible element containing p, or nil.
func (s *Surface) ElementAt(p geom.Point) *Element {
	all := s.Elements()
	for i := len(all) - 1; i >= 0; i-- {
		el := all[i]
		if el.Hidden() {
			continue
		}
		if s.BoundingBox(el).Contains(p) {
			return el
		}
	}
	return nil
}

// Hovered reports whether the pointer is over el or one of its descendants.
func (s *Surface) Hovered(el *Element) bool {
	for _, h := range s.hovered {
		if h == el {
			return true
		}
	}
	return false
}

// Pointer returns the last pointer position.
func (s *Surface) Pointer() (geom.Point, bool) {
	return s.pointer, s.hasPointer
}

// ScrollY returns the vertical scroll offset.
func (s *Surface) ScrollY() float64 {
	return s.scrollY
}

// MoveTo records a pointer sample at p.
// Boundary events fire first, then surface-level move listeners.
func (s *Surface) MoveTo(p geom.Point) {
	s.pointer = p
	s.hasPointer = true
	deepest := s.updateHover()

	s.dispatchSurface(&Event{
		Kind:     KindMove,
		Target:   deepest,
		Position: p,
		ScrollY:  s.scrollY,
		Time:     s.sched.Now(),
	})
}

// Exit records that the pointer left the surface entirely.
func (s *Surface) Exit() {
	s.hasPointer = false
	s.updateHover()
}

// ScrollBy scrolls the content by dy.
func (s *Surface) ScrollBy(dy float64) {
	s.ScrollTo(s.scrollY + dy)
}

// ScrollTo sets the scroll offset. Scroll listeners run, then hover state is
// refreshed because content moved under a stationary pointer.
func (s *Surface) ScrollTo(y float64) {
	if y < 0 {
		y = 0
	}
	if y == s.scrollY {
		return
	}
	s.scrollY = y

	s.dispatchSurface(&Event{
		Kind:     KindScroll,
		Position: s.pointer,
		ScrollY:  y,
		Time:     s.sched.Now(),
	})

	if s.hasPointer {
		s.updateHover()
	}
}

// On registers a surface-level listener. Surface-level listeners receive
// move and scroll events, and over events after they bubble past the roots.
// The returned function removes the listener.
func (s *Surface) On(kind Kind, fn Listener) (remove func()) {
	l := &listener{fn: fn}
	s.listeners[kind] = append(s.listeners[kind], l)

	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := s.listeners[kind]
		for i, other := range list {
			if other == l {
				s.listeners[kind] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers evt at evt.Target. Over events bubble through the
// ancestors and then to surface-level listeners; other kinds are delivered
// to the target only. An event with no target goes to surface-level
// listeners. Events dispatched at detached elements are dropped.
func (s *Surface) Dispatch(evt *Event) {
	if evt.Time.IsZero() {
		evt.Time = s.sched.Now()
	}
	if evt.Target == nil {
		s.dispatchSurface(evt)
		return
	}
	if !evt.Target.attached || evt.Target.surface != s {
		return
	}

	for el := evt.Target; el != nil; el = el.parent {
		evt.CurrentTarget = el
		fire(el.listeners[evt.Kind], evt)
		if evt.Kind != KindOver {
			evt.CurrentTarget = nil
			return
		}
	}
	evt.CurrentTarget = nil
	fire(s.listeners[evt.Kind], evt)
}

// ListenerCount returns the number of listeners registered on the surface and
// on every element it has ever owned, attached or not.
func (s *Surface) ListenerCount() int {
	n := 0
	for _, list := range s.listeners {
		n += len(list)
	}
	for el := range s.known {
		n += el.ListenerCount()
	}
	return n
}

func (s *Surface) dispatchSurface(evt *Event) {
	evt.CurrentTarget = nil
	fire(s.listeners[evt.Kind], evt)
}

// updateHover recomputes the hover chain and fires boundary events in the
// order leave, over, enter. It returns the new deepest hovered element.
func (s *Surface) updateHover() *Element {
	var deepest *Element
	if s.hasPointer {
		deepest = s.ElementAt(s.pointer)
	}

	var chain []*Element
	for el := deepest; el != nil; el = el.parent {
		chain = append(chain, el)
	}

	old := s.hovered
	var oldDeepest *Element
	if len(old) > 0 {
		oldDeepest = old[0]
	}
	s.hovered = chain

	now := s.sched.Now()
	for _, el := range old {
		if !containsElement(chain, el) {
			s.Dispatch(&Event{Kind: KindLeave, Target: el, Position: s.pointer, ScrollY: s.scrollY, Time: now})
		}
	}
	if deepest != nil && deepest != oldDeepest {
		s.Dispatch(&Event{Kind: KindOver, Target: deepest, Position: s.pointer, ScrollY: s.scrollY, Time: now})
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if el := chain[i]; !containsElement(old, el) {
			s.Dispatch(&Event{Kind: KindEnter, Target: el, Position: s.pointer, ScrollY: s.scrollY, Time: now})
		}
	}
	return deepest
}

func containsElement(list []*Element, el *Element) bool {
	for _, other := range list {
		if other == el {
			return true
		}
	}
	return false
}

func fire(list []*listener, evt *Event) {
	if len(list) == 0 {
		return
	}
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		if !l.removed {
			l.fn(evt)
		}
	}
}
