package surface

import "github.com/dshills/hoverintent/internal/geom"

// Element is a rectangular region on a Surface.
//
// Bounds are in content coordinates; the surface translates them into
// viewport coordinates using the scroll offset unless the element (or an
// ancestor) is fixed.
type Element struct {
	// ID identifies the element for target lookup. May be empty.
	ID string

	// Label is display text used by renderers.
	Label string

	bounds  geom.Rect
	classes []string
	data    map[string]string
	fixed   bool
	hidden  bool

	parent   *Element
	children []*Element
	surface  *Surface
	attached bool

	listeners map[Kind][]*listener
}

// NewElement creates a detached element.
func NewElement(id string, bounds geom.Rect) *Element {
	return &Element{
		ID:     id,
		bounds: bounds,
		data:   make(map[string]string),
	}
}

// Bounds returns the element's content-coordinate bounds.
func (e *Element) Bounds() geom.Rect {
	return e.bounds
}

// SetBounds moves or resizes the element.
// Hover state is refreshed at the next pointer sample.
func (e *Element) SetBounds(r geom.Rect) {
	e.bounds = r
}

// SetData sets a data attribute.
func (e *Element) SetData(key, value string) *Element {
	e.data[key] = value
	return e
}

// Data returns a data attribute.
func (e *Element) Data(key string) (string, bool) {
	v, ok := e.data[key]
	return v, ok
}

// AddClass adds class names used by selector matching.
func (e *Element) AddClass(names ...string) *Element {
	e.classes = append(e.classes, names...)
	return e
}

// HasClass reports whether the element has the class name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

// SetFixed pins the element to the viewport so scrolling does not move it.
func (e *Element) SetFixed(fixed bool) *Element {
	e.fixed = fixed
	return e
}

// SetHidden hides or shows the element and its descendants.
// Hidden elements are never hit and report a zero bounding box.
func (e *Element) SetHidden(hidden bool) *Element {
	e.hidden = hidden
	return e
}

// Hidden reports whether the element or an ancestor is hidden.
func (e *Element) Hidden() bool {
	for el := e; el != nil; el = el.parent {
		if el.hidden {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil for a top-level element.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the child elements in z-order.
func (e *Element) Children() []*Element {
	return e.children
}

// Attached reports whether the element is currently part of a surface.
func (e *Element) Attached() bool {
	return e.attached
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for el := other; el != nil; el = el.parent {
		if el == e {
			return true
		}
	}
	return false
}

// On registers fn for events of kind dispatched at this element.
// The returned function removes the listener; calling it again is a no-op.
func (e *Element) On(kind Kind, fn Listener) (remove func()) {
	if e.listeners == nil {
		e.listeners = make(map[Kind][]*listener)
	}
	l := &listener{fn: fn}
	e.listeners[kind] = append(e.listeners[kind], l)

	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := e.listeners[kind]
		for i, other := range list {
			if other == l {
				e.listeners[kind] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount returns the number of listeners registered on the element.
func (e *Element) ListenerCount() int {
	n := 0
	for _, list := range e.listeners {
		n += len(list)
	}
	return n
}

func (e *Element) isFixed() bool {
	for el := e; el != nil; el = el.parent {
		if el.fixed {
			return true
		}
	}
	return false
}
