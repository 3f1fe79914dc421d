package surface

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/geom"
)

type recorder struct {
	log []string
}

func (r *recorder) listen(el *Element, kinds ...Kind) {
	for _, k := range kinds {
		k := k
		el.On(k, func(evt *Event) {
			r.log = append(r.log, k.String()+":"+el.ID)
		})
	}
}

func (r *recorder) String() string {
	return strings.Join(r.log, " ")
}

func newTestSurface() (*Surface, *Element, *Element, *Element) {
	s := New(clock.NewManual(time.Time{}), WithSize(100, 40))
	bar := s.Append(nil, NewElement("bar", geom.RectFromSize(0, 0, 30, 1)))
	file := s.Append(bar, NewElement("file", geom.RectFromSize(0, 0, 10, 1)))
	edit := s.Append(bar, NewElement("edit", geom.RectFromSize(10, 0, 10, 1)))
	return s, bar, file, edit
}

func TestBoundaryEventOrder(t *testing.T) {
	s, bar, file, edit := newTestSurface()
	r := &recorder{}
	for _, el := range []*Element{bar, file, edit} {
		r.listen(el, KindEnter, KindLeave, KindOver)
	}

	s.MoveTo(geom.Pt(2, 0))
	if got, want := r.String(), "over:file over:bar enter:bar enter:file"; got != want {
		t.Errorf("entering file: %q, want %q", got, want)
	}

	r.log = nil
	s.MoveTo(geom.Pt(12, 0))
	if got, want := r.String(), "leave:file over:edit over:bar enter:edit"; got != want {
		t.Errorf("file -> edit: %q, want %q", got, want)
	}

	r.log = nil
	s.MoveTo(geom.Pt(12, 0))
	if got := r.String(); got != "" {
		t.Errorf("same position fired %q, want nothing", got)
	}

	r.log = nil
	s.MoveTo(geom.Pt(50, 20))
	if got, want := r.String(), "leave:edit leave:bar"; got != want {
		t.Errorf("leaving bar: %q, want %q", got, want)
	}
}

func TestMoveEventsReachSurfaceListeners(t *testing.T) {
	s, _, file, _ := newTestSurface()
	var moves []*Event
	remove := s.On(KindMove, func(evt *Event) { moves = append(moves, evt) })

	s.MoveTo(geom.Pt(2, 0))
	s.MoveTo(geom.Pt(60, 10))
	remove()
	s.MoveTo(geom.Pt(61, 10))

	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(moves))
	}
	if moves[0].Target != file {
		t.Errorf("first move target = %v, want file", moves[0].Target)
	}
	if moves[1].Target != nil {
		t.Errorf("second move target = %v, want nil", moves[1].Target)
	}
	if !moves[1].Position.Equal(geom.Pt(60, 10)) {
		t.Errorf("position = %v, want (60,10)", moves[1].Position)
	}
}

func TestOverBubblesToSurface(t *testing.T) {
	s, bar, file, _ := newTestSurface()
	var current []*Element
	bar.On(KindOver, func(evt *Event) { current = append(current, evt.CurrentTarget) })
	var surfaceTarget *Element
	s.On(KindOver, func(evt *Event) { surfaceTarget = evt.Target })

	s.MoveTo(geom.Pt(1, 0))

	if len(current) != 1 || current[0] != bar {
		t.Errorf("bar listener CurrentTarget = %v, want [bar]", current)
	}
	if surfaceTarget != file {
		t.Errorf("surface listener Target = %v, want file", surfaceTarget)
	}
}

func TestScrollMovesContent(t *testing.T) {
	s := New(clock.NewManual(time.Time{}), WithSize(100, 40))
	panel := s.Append(nil, NewElement("panel", geom.RectFromSize(0, 10, 20, 5)))
	header := s.Append(nil, NewElement("header", geom.RectFromSize(0, 0, 20, 1)).SetFixed(true))

	r := &recorder{}
	r.listen(panel, KindEnter, KindLeave)
	var scrolls []float64
	s.On(KindScroll, func(evt *Event) { scrolls = append(scrolls, evt.ScrollY) })

	s.MoveTo(geom.Pt(5, 11))
	s.ScrollBy(5)

	if got := s.BoundingBox(panel); got.Top != 5 {
		t.Errorf("panel top after scroll = %v, want 5", got.Top)
	}
	if got := s.BoundingBox(header); got.Top != 0 {
		t.Errorf("fixed header top after scroll = %v, want 0", got.Top)
	}
	if len(scrolls) != 1 || scrolls[0] != 5 {
		t.Errorf("scroll events = %v, want [5]", scrolls)
	}
	if got, want := r.String(), "enter:panel leave:panel"; got != want {
		t.Errorf("boundary events = %q, want %q", got, want)
	}

	s.ScrollTo(-3)
	if s.ScrollY() != 0 {
		t.Errorf("ScrollY() = %v, want clamp to 0", s.ScrollY())
	}
}

func TestRemoveDegradesBoundingBox(t *testing.T) {
	s, bar, file, _ := newTestSurface()
	s.MoveTo(geom.Pt(1, 0))

	s.Remove(bar)

	if !s.BoundingBox(file).IsEmpty() {
		t.Errorf("BoundingBox(detached) = %+v, want zero", s.BoundingBox(file))
	}
	if s.Lookup("file") != nil {
		t.Error("Lookup of detached element should be nil")
	}
	if s.Hovered(file) {
		t.Error("detached element still hovered")
	}
	if file.Attached() {
		t.Error("Attached() = true after Remove")
	}
}

func TestHiddenElementsAreNotHit(t *testing.T) {
	s := New(clock.NewManual(time.Time{}))
	under := s.Append(nil, NewElement("under", geom.RectFromSize(0, 0, 10, 10)))
	over := s.Append(nil, NewElement("over", geom.RectFromSize(0, 0, 10, 10)))

	if got := s.ElementAt(geom.Pt(1, 1)); got != over {
		t.Errorf("ElementAt = %v, want over", got.ID)
	}
	over.SetHidden(true)
	if got := s.ElementAt(geom.Pt(1, 1)); got != under {
		t.Errorf("ElementAt with over hidden = %v, want under", got.ID)
	}
	if !s.BoundingBox(over).IsEmpty() {
		t.Error("hidden element should report zero bounding box")
	}
}

func TestListenerCount(t *testing.T) {
	s, bar, file, _ := newTestSurface()
	if s.ListenerCount() != 0 {
		t.Fatalf("ListenerCount() = %d, want 0", s.ListenerCount())
	}

	r1 := bar.On(KindOver, func(*Event) {})
	r2 := file.On(KindLeave, func(*Event) {})
	r3 := s.On(KindMove, func(*Event) {})
	if s.ListenerCount() != 3 {
		t.Errorf("ListenerCount() = %d, want 3", s.ListenerCount())
	}

	s.Remove(file)
	if s.ListenerCount() != 3 {
		t.Errorf("ListenerCount() after Remove = %d, want 3 (detached listeners still count)", s.ListenerCount())
	}

	r1()
	r2()
	r3()
	r3()
	if s.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d, want 0", s.ListenerCount())
	}
}

func TestRemoveDuringDispatch(t *testing.T) {
	s, _, file, _ := newTestSurface()
	calls := 0
	var second func()
	file.On(KindEnter, func(*Event) { second() })
	second = file.On(KindEnter, func(*Event) { calls++ })

	s.MoveTo(geom.Pt(1, 0))
	if calls != 0 {
		t.Errorf("listener removed during dispatch ran %d times", calls)
	}
}

func TestDispatchReplay(t *testing.T) {
	s, bar, file, _ := newTestSurface()
	var got []*Event
	bar.On(KindOver, func(evt *Event) {
		got = append(got, evt)
		evt.PreventDefault()
	})

	s.MoveTo(geom.Pt(1, 0))
	if len(got) != 1 || !got[0].DefaultPrevented() {
		t.Fatalf("expected one prevented over event, got %d", len(got))
	}

	replay := got[0].Replay(s.Scheduler().Now())
	if replay.DefaultPrevented() || !replay.Synthetic || replay.Target != file {
		t.Errorf("Replay() = %+v", replay)
	}
	s.Dispatch(replay)
	if len(got) != 2 || got[1] != replay {
		t.Errorf("replayed event not delivered")
	}

	s.Remove(file)
	s.Dispatch(got[0].Replay(s.Scheduler().Now()))
	if len(got) != 2 {
		t.Error("event dispatched at detached element was delivered")
	}
}

func TestParseSelector(t *testing.T) {
	el := NewElement("file", geom.Rect{}).AddClass("trigger").SetData("intent-target", "menu")

	tests := []struct {
		sel  string
		want bool
	}{
		{".trigger", true},
		{".other", false},
		{"#file", true},
		{"[intent-target]", true},
		{"[missing]", false},
		{".other, #file", true},
	}

	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			m, err := ParseSelector(tt.sel)
			if err != nil {
				t.Fatalf("ParseSelector() error = %v", err)
			}
			if got := m(el); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseSelector("div > span"); err == nil {
		t.Error("ParseSelector(unsupported) error = nil")
	}
}
