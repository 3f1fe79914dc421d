package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/event"
	"github.com/dshills/hoverintent/internal/geom"
	"github.com/dshills/hoverintent/internal/surface"
)

const step = 200 * time.Millisecond

type harness struct {
	t   *testing.T
	clk *clock.Manual
	s   *surface.Surface

	hovers []string
	leaves []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := clock.NewManual(time.Time{})
	return &harness{
		t:   t,
		clk: clk,
		s:   surface.New(clk, surface.WithSize(300, 300)),
	}
}

func (h *harness) config() Config {
	return Config{
		OnHover: func(_ *surface.Event, target, trigger *surface.Element) {
			h.hovers = append(h.hovers, trigger.ID)
		},
		OnLeave: func(_ *surface.Event, target, trigger *surface.Element) {
			h.leaves = append(h.leaves, trigger.ID)
		},
	}
}

func (h *harness) bind(cfg Config, roots ...*surface.Element) *Binding {
	h.t.Helper()
	b, err := Bind(h.s, cfg, roots...)
	if err != nil {
		h.t.Fatalf("Bind() error = %v", err)
	}
	return b
}

func (h *harness) move(x, y float64) {
	h.clk.Advance(step)
	h.s.MoveTo(geom.Pt(x, y))
}

func (h *harness) activate(x, y float64) {
	h.s.MoveTo(geom.Pt(x, y))
	h.clk.Advance(DefaultActivationDelay)
}

// single builds one trigger at the origin and one target to its right.
func single(h *harness) (trigger, target *surface.Element) {
	trigger = h.s.Append(nil, surface.NewElement("trigger", geom.RectFromSize(0, 0, 10, 1)))
	trigger.SetData(DefaultAttr, "target")
	target = h.s.Append(nil, surface.NewElement("target", geom.RectFromSize(100, 0, 100, 50)))
	return trigger, target
}

// menubar builds two adjacent triggers under one root, each with a menu below.
func menubar(h *harness) (bar, file, edit *surface.Element) {
	bar = h.s.Append(nil, surface.NewElement("bar", geom.RectFromSize(0, 0, 40, 2)))
	file = h.s.Append(bar, surface.NewElement("file", geom.RectFromSize(0, 0, 10, 2)))
	file.AddClass("trigger").SetData(DefaultAttr, "file-menu")
	edit = h.s.Append(bar, surface.NewElement("edit", geom.RectFromSize(10, 0, 10, 2)))
	edit.AddClass("trigger").SetData(DefaultAttr, "edit-menu")
	h.s.Append(nil, surface.NewElement("file-menu", geom.RectFromSize(0, 3, 60, 10)))
	h.s.Append(nil, surface.NewElement("edit-menu", geom.RectFromSize(10, 3, 30, 10)))
	return bar, file, edit
}

func (h *harness) assertNoLeaks(baseline int) {
	h.t.Helper()
	if got := h.s.ListenerCount(); got != baseline {
		h.t.Errorf("ListenerCount() = %d, want %d", got, baseline)
	}
	if got := h.s.Signals().Len(); got != 0 {
		h.t.Errorf("bus Len() = %d, want 0", got)
	}
	if got := h.clk.Pending(); got != 0 {
		h.t.Errorf("clock Pending() = %d, want 0", got)
	}
}

func tracking(b *Binding) int {
	n := 0
	for _, s := range b.Sessions() {
		if s.State() == StateTracking {
			n++
		}
	}
	return n
}

func TestMoveTowardTargetCommits(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)
	baseline := h.s.ListenerCount()

	h.activate(0, 0)
	sess := b.Active()
	if sess == nil {
		t.Fatal("Active() = nil after activation")
	}

	h.move(10, 0)
	if _, ok := sess.Triangle(); !ok {
		t.Fatal("Triangle() not set after trigger leave")
	}
	h.move(90, 0)
	h.move(150, 20)

	if sess.State() != StateCommitted {
		t.Errorf("State() = %v, want %v", sess.State(), StateCommitted)
	}
	if len(h.hovers) != 1 {
		t.Errorf("onHover calls = %d, want 1", len(h.hovers))
	}
	if len(h.leaves) != 0 {
		t.Errorf("onLeave calls = %d, want 0", len(h.leaves))
	}
	if b.Active() != nil {
		t.Error("Active() != nil after commit")
	}
	if got := len(b.Sessions()); got != 1 {
		t.Errorf("len(Sessions()) = %d, want 1", got)
	}

	h.move(250, 250)
	if !sess.Closed() {
		t.Error("session still open after leaving target")
	}
	if len(h.leaves) != 1 {
		t.Errorf("onLeave calls = %d, want 1", len(h.leaves))
	}
	h.assertNoLeaks(baseline)
}

func TestMoveAwayAbandons(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)
	baseline := h.s.ListenerCount()

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)
	h.move(10, 200)

	if sess.State() != StateAbandoned {
		t.Errorf("State() = %v, want %v", sess.State(), StateAbandoned)
	}
	if len(h.leaves) != 1 {
		t.Errorf("onLeave calls = %d, want 1", len(h.leaves))
	}
	if _, ok := b.Cached(); ok {
		t.Error("Cached() reports a pending replay")
	}
	if b.Stats().Replayed != 0 {
		t.Errorf("Stats().Replayed = %d, want 0", b.Stats().Replayed)
	}
	h.assertNoLeaks(baseline)
}

func TestApexFollowsSample(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)
	h.move(40, 5)

	tri, _ := sess.Triangle()
	if want := geom.Pt(40, 5); !tri.P1.Equal(want) {
		t.Errorf("Triangle().P1 = %v, want %v", tri.P1, want)
	}
}

func TestIdleAbandons(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)
	baseline := h.s.ListenerCount()

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)

	h.clk.Advance(DefaultIdleThreshold - time.Millisecond)
	if sess.State() != StateTracking {
		t.Fatalf("State() = %v before idle threshold", sess.State())
	}
	h.clk.Advance(time.Millisecond)

	if sess.State() != StateAbandoned {
		t.Errorf("State() = %v, want %v", sess.State(), StateAbandoned)
	}
	h.clk.Advance(DefaultIdleThreshold)
	if len(h.leaves) != 1 {
		t.Errorf("onLeave calls = %d, want 1", len(h.leaves))
	}
	h.assertNoLeaks(baseline)
}

func TestScrollForcesLeave(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	cfg := h.config()
	cfg.ScrollThreshold = 5
	b := h.bind(cfg, trigger)
	baseline := h.s.ListenerCount()

	var forced int
	sub, err := h.s.Signals().Subscribe(DefaultForceLeaveTopic, func(context.Context, event.Signal) error {
		forced++
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)

	h.s.ScrollBy(3)
	if sess.State() != StateTracking {
		t.Fatalf("State() = %v after small scroll, want %v", sess.State(), StateTracking)
	}
	h.s.ScrollBy(3)

	if sess.State() != StateAbandoned {
		t.Errorf("State() = %v, want %v", sess.State(), StateAbandoned)
	}
	if forced != 1 {
		t.Errorf("force leave signals = %d, want 1", forced)
	}
	if len(h.leaves) != 1 {
		t.Errorf("onLeave calls = %d, want 1", len(h.leaves))
	}
	sub.Cancel()
	h.assertNoLeaks(baseline)
}

func TestForceLeaveSignal(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)

	sig := event.NewSignal(DefaultForceLeaveTopic, nil, "test")
	if err := h.s.Signals().Publish(context.Background(), sig); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if sess.State() != StateAbandoned {
		t.Errorf("State() = %v, want %v", sess.State(), StateAbandoned)
	}
	if err := h.s.Signals().Publish(context.Background(), sig); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(h.leaves) != 1 {
		t.Errorf("onLeave calls = %d, want 1", len(h.leaves))
	}
}

func TestSingleFlightReplaysCachedActivation(t *testing.T) {
	h := newHarness(t)
	bar, _, edit := menubar(h)
	cfg := h.config()
	cfg.Selector = surface.MatchClass("trigger")
	b := h.bind(cfg, bar)

	h.activate(5, 0)
	first := b.Active()
	if first == nil || first.Trigger().ID != "file" {
		t.Fatalf("Active() = %v, want file session", first)
	}

	// Crossing onto edit stays inside the cone toward file-menu.
	h.move(12, 1)
	h.clk.Advance(DefaultActivationDelay)

	if first.State() != StateTracking {
		t.Fatalf("first State() = %v, want %v", first.State(), StateTracking)
	}
	if got, ok := b.Cached(); !ok || got != edit {
		t.Fatalf("Cached() = %v, %v, want edit", got, ok)
	}
	if n := tracking(b); n != 1 {
		t.Errorf("tracking sessions = %d, want 1", n)
	}
	if len(h.hovers) != 1 {
		t.Errorf("onHover calls = %d, want 1 before replay", len(h.hovers))
	}

	h.clk.Advance(DefaultIdleThreshold + DefaultActivationDelay)

	if first.State() != StateAbandoned {
		t.Errorf("first State() = %v, want %v", first.State(), StateAbandoned)
	}
	second := b.Active()
	if second == nil || second.Trigger() != edit {
		t.Fatalf("Active() = %v, want edit session", second)
	}
	if n := tracking(b); n != 1 {
		t.Errorf("tracking sessions = %d, want 1", n)
	}
	if want := []string{"file", "edit"}; len(h.hovers) != 2 || h.hovers[0] != want[0] || h.hovers[1] != want[1] {
		t.Errorf("hovers = %v, want %v", h.hovers, want)
	}
	st := b.Stats()
	if st.Cached != 1 || st.Replayed != 1 {
		t.Errorf("Stats() cached/replayed = %d/%d, want 1/1", st.Cached, st.Replayed)
	}
	if _, ok := b.Cached(); ok {
		t.Error("cache not cleared after replay")
	}
}

func TestCachedTriggerLeaveDiscards(t *testing.T) {
	h := newHarness(t)
	bar, _, _ := menubar(h)
	cfg := h.config()
	cfg.Selector = surface.MatchClass("trigger")
	b := h.bind(cfg, bar)
	baseline := h.s.ListenerCount()

	h.activate(5, 0)
	first := b.Active()
	h.move(12, 1)
	h.clk.Advance(DefaultActivationDelay)
	if _, ok := b.Cached(); !ok {
		t.Fatal("Cached() = false, want edit cached")
	}

	h.move(5, 4)
	if _, ok := b.Cached(); ok {
		t.Error("cache survived its trigger leave")
	}
	if first.State() != StateCommitted {
		t.Errorf("first State() = %v, want %v", first.State(), StateCommitted)
	}

	h.move(100, 100)
	if st := b.Stats(); st.Discarded != 1 || st.Replayed != 0 {
		t.Errorf("Stats() discarded/replayed = %d/%d, want 1/0", st.Discarded, st.Replayed)
	}
	if len(h.leaves) != 1 {
		t.Errorf("onLeave calls = %d, want 1", len(h.leaves))
	}
	h.assertNoLeaks(baseline)
}

func TestNewerActivationOverwritesCache(t *testing.T) {
	h := newHarness(t)
	bar, _, edit := menubar(h)
	find := h.s.Append(edit, surface.NewElement("find", geom.RectFromSize(14, 0, 2, 2)))
	find.AddClass("trigger").SetData(DefaultAttr, "edit-menu")
	cfg := h.config()
	cfg.Selector = surface.MatchClass("trigger")
	b := h.bind(cfg, bar)

	h.activate(5, 0)
	first := b.Active()

	h.s.MoveTo(geom.Pt(12, 1))
	h.clk.Advance(DefaultActivationDelay)
	if got, _ := b.Cached(); got != edit {
		t.Fatalf("Cached() = %v, want edit", got)
	}

	// find sits inside edit, so edit is never left.
	h.s.MoveTo(geom.Pt(15, 1))
	h.clk.Advance(DefaultActivationDelay)
	if got, _ := b.Cached(); got != find {
		t.Fatalf("Cached() = %v, want find", got)
	}
	if first.State() != StateTracking {
		t.Fatalf("first State() = %v, want %v", first.State(), StateTracking)
	}
	if got := b.Stats().Discarded; got != 0 {
		t.Errorf("Stats().Discarded = %d, want 0", got)
	}
	if got := edit.ListenerCount(); got != 0 {
		t.Errorf("edit ListenerCount() = %d, want 0", got)
	}
}

func TestDebounceCancelledByTriggerLeave(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)
	baseline := h.s.ListenerCount()

	h.s.MoveTo(geom.Pt(0, 0))
	h.clk.Advance(DefaultActivationDelay / 2)
	h.s.MoveTo(geom.Pt(50, 80))
	h.clk.Advance(time.Second)

	if b.Active() != nil {
		t.Error("Active() != nil after cancelled activation")
	}
	if len(h.hovers) != 0 {
		t.Errorf("onHover calls = %d, want 0", len(h.hovers))
	}
	h.assertNoLeaks(baseline)
}

func TestMissingTargetIsNoop(t *testing.T) {
	h := newHarness(t)
	trigger := h.s.Append(nil, surface.NewElement("trigger", geom.RectFromSize(0, 0, 10, 1)))
	trigger.SetData(DefaultAttr, "nowhere")
	b := h.bind(h.config(), trigger)
	baseline := h.s.ListenerCount()

	h.activate(0, 0)

	if b.Active() != nil {
		t.Error("Active() != nil for unresolved target")
	}
	if got := b.Stats().NoTarget; got != 1 {
		t.Errorf("Stats().NoTarget = %d, want 1", got)
	}
	h.assertNoLeaks(baseline)
}

func TestSuppressedHoverInstallsNothing(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	cfg := h.config()
	cfg.OnHover = func(evt *surface.Event, _, _ *surface.Element) { evt.PreventDefault() }
	b := h.bind(cfg, trigger)
	baseline := h.s.ListenerCount()

	h.activate(0, 0)

	if b.Active() != nil {
		t.Error("Active() != nil after suppressed hover")
	}
	if got := b.Stats().Suppressed; got != 1 {
		t.Errorf("Stats().Suppressed = %d, want 1", got)
	}
	h.assertNoLeaks(baseline)
}

func TestSuppressedLeaveKeepsTracking(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	cfg := h.config()
	vetoes := 1
	cfg.OnLeave = func(evt *surface.Event, _, trigger *surface.Element) {
		h.leaves = append(h.leaves, trigger.ID)
		if vetoes > 0 {
			vetoes--
			evt.PreventDefault()
		}
	}
	b := h.bind(cfg, trigger)

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)
	h.move(10, 200)

	if sess.State() != StateTracking || sess.Left() {
		t.Fatalf("State() = %v, Left() = %v after vetoed leave", sess.State(), sess.Left())
	}
	if b.Active() != sess {
		t.Error("vetoed leave released the slot")
	}

	h.move(10, 250)
	if sess.State() != StateAbandoned || !sess.Left() {
		t.Errorf("State() = %v, Left() = %v, want abandoned and left", sess.State(), sess.Left())
	}
	if len(h.leaves) != 2 {
		t.Errorf("onLeave calls = %d, want 2", len(h.leaves))
	}
}

func TestRemovedTargetAbandons(t *testing.T) {
	h := newHarness(t)
	trigger, target := single(h)
	b := h.bind(h.config(), trigger)

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)
	h.s.Remove(target)
	h.move(20, 0)
	h.move(30, 5)

	if sess.State() != StateAbandoned {
		t.Errorf("State() = %v, want %v", sess.State(), StateAbandoned)
	}
}

func TestLifecycleSignals(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	h.bind(h.config(), trigger)

	var topics []string
	sub, err := h.s.Signals().Subscribe("intent.session.*", func(_ context.Context, sig event.Signal) error {
		info, ok := sig.Payload.(SessionInfo)
		if !ok || info.Target != "target" {
			t.Errorf("payload = %#v, want SessionInfo for target", sig.Payload)
		}
		topics = append(topics, sig.Topic.String())
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Cancel()

	h.activate(0, 0)
	h.move(10, 0)
	h.move(150, 20)
	h.move(250, 250)

	want := []string{"intent.session.started", "intent.session.committed", "intent.session.left"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("topics[%d] = %q, want %q", i, topics[i], want[i])
		}
	}
}

func TestDestroy(t *testing.T) {
	h := newHarness(t)
	bar, _, _ := menubar(h)
	cfg := h.config()
	cfg.Selector = surface.MatchClass("trigger")
	b := h.bind(cfg, bar)

	h.activate(5, 0)
	first := b.Active()
	h.move(12, 1)
	h.clk.Advance(DefaultActivationDelay)
	h.s.MoveTo(geom.Pt(5, 1))

	b.Destroy()
	b.Destroy()

	if first.State() != StateCancelled {
		t.Errorf("State() = %v, want %v", first.State(), StateCancelled)
	}
	if len(h.leaves) != 0 {
		t.Errorf("onLeave calls = %d, want 0", len(h.leaves))
	}
	if len(b.Sessions()) != 0 || b.Active() != nil {
		t.Error("sessions survived Destroy")
	}
	h.assertNoLeaks(0)

	h.activate(12, 1)
	if len(h.hovers) != 1 {
		t.Errorf("onHover calls = %d after Destroy, want 1", len(h.hovers))
	}
}

func TestBindSurfaceWideSelector(t *testing.T) {
	h := newHarness(t)
	menubar(h)
	cfg := h.config()
	cfg.Selector = surface.MatchClass("trigger")
	b := h.bind(cfg)

	h.activate(15, 0)
	if s := b.Active(); s == nil || s.Trigger().ID != "edit" {
		t.Fatalf("Active() = %v, want edit session", s)
	}
}

func TestBindValidation(t *testing.T) {
	h := newHarness(t)
	root := h.s.Append(nil, surface.NewElement("root", geom.RectFromSize(0, 0, 10, 1)))

	tests := []struct {
		name  string
		s     Surface
		cfg   Config
		roots []*surface.Element
		want  error
	}{
		{"nil surface", nil, Config{}, []*surface.Element{root}, ErrNoSurface},
		{"no roots no selector", h.s, Config{}, nil, ErrInvalidConfig},
		{"negative move", h.s, Config{MoveThreshold: -1}, []*surface.Element{root}, ErrInvalidConfig},
		{"negative idle", h.s, Config{IdleThreshold: -1}, []*surface.Element{root}, ErrInvalidConfig},
		{"negative scroll", h.s, Config{ScrollThreshold: -1}, []*surface.Element{root}, ErrInvalidConfig},
		{"wildcard topic", h.s, Config{ForceLeaveTopic: "intent.*"}, []*surface.Element{root}, ErrInvalidConfig},
		{"ok", h.s, Config{}, []*surface.Element{root}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Bind(tt.s, tt.cfg, tt.roots...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Bind() error = %v, want %v", err, tt.want)
			}
			if b != nil {
				b.Destroy()
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	h := newHarness(t)
	root := h.s.Append(nil, surface.NewElement("root", geom.RectFromSize(0, 0, 10, 1)))
	b := h.bind(Config{}, root)
	cfg := b.Config()

	if cfg.Attr != DefaultAttr {
		t.Errorf("Attr = %q, want %q", cfg.Attr, DefaultAttr)
	}
	if cfg.MoveThreshold != DefaultMoveThreshold {
		t.Errorf("MoveThreshold = %v, want %v", cfg.MoveThreshold, DefaultMoveThreshold)
	}
	if cfg.IdleThreshold != DefaultIdleThreshold {
		t.Errorf("IdleThreshold = %v, want %v", cfg.IdleThreshold, DefaultIdleThreshold)
	}
	if cfg.ScrollThreshold != 0 {
		t.Errorf("ScrollThreshold = %v, want 0 (viewport relative)", cfg.ScrollThreshold)
	}
	if got := b.scrollThreshold(); got != 30 {
		t.Errorf("scrollThreshold() = %v, want 30", got)
	}
	h.s.Resize(300, 5)
	if got := b.scrollThreshold(); got != 1 {
		t.Errorf("scrollThreshold() after Resize = %v, want 1", got)
	}
	if cfg.ForceLeaveTopic != DefaultForceLeaveTopic {
		t.Errorf("ForceLeaveTopic = %q, want %q", cfg.ForceLeaveTopic, DefaultForceLeaveTopic)
	}
}

// mustPanic runs fn and fails unless it panics.
func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("callback panic did not propagate")
		}
	}()
	fn()
}

func TestScrollThresholdFollowsViewport(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	b := h.bind(h.config(), trigger)
	h.s.Resize(300, 50)

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)

	h.s.ScrollBy(3)
	if sess.State() != StateTracking {
		t.Fatalf("State() = %v after small scroll, want %v", sess.State(), StateTracking)
	}
	h.s.ScrollBy(3)
	if sess.State() != StateAbandoned {
		t.Errorf("State() = %v after scrolling past a tenth of the resized viewport, want %v", sess.State(), StateAbandoned)
	}
}

func TestHoverPanicReleasesSlot(t *testing.T) {
	h := newHarness(t)
	bar, _, edit := menubar(h)
	cfg := h.config()
	cfg.Selector = surface.MatchClass("trigger")
	panics := 1
	cfg.OnHover = func(_ *surface.Event, _, trigger *surface.Element) {
		if panics > 0 {
			panics--
			panic("hover failed")
		}
		h.hovers = append(h.hovers, trigger.ID)
	}
	b := h.bind(cfg, bar)
	baseline := h.s.ListenerCount()

	mustPanic(t, func() { h.activate(5, 0) })
	if b.Active() != nil || len(b.Sessions()) != 0 {
		t.Fatalf("Active() = %v, Sessions() = %v after hover panic, want none", b.Active(), b.Sessions())
	}
	h.assertNoLeaks(baseline)

	h.activate(12, 1)
	if s := b.Active(); s == nil || s.Trigger() != edit {
		t.Fatalf("Active() = %v, want edit session", s)
	}
	if _, ok := b.Cached(); ok {
		t.Error("activation cached behind a session that panicked")
	}
	if len(h.hovers) != 1 || h.hovers[0] != "edit" {
		t.Errorf("hovers = %v, want [edit]", h.hovers)
	}
	if st := b.Stats(); st.Started != 1 || st.Cached != 0 {
		t.Errorf("Stats() started/cached = %d/%d, want 1/0", st.Started, st.Cached)
	}
}

func TestLeavePanicRetriedByIdle(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	cfg := h.config()
	panics := 1
	cfg.OnLeave = func(_ *surface.Event, _, trigger *surface.Element) {
		h.leaves = append(h.leaves, trigger.ID)
		if panics > 0 {
			panics--
			panic("leave failed")
		}
	}
	b := h.bind(cfg, trigger)
	baseline := h.s.ListenerCount()

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)
	mustPanic(t, func() { h.move(10, 200) })

	if sess.State() != StateTracking || sess.Left() {
		t.Fatalf("State() = %v, Left() = %v after leave panic", sess.State(), sess.Left())
	}

	h.clk.Advance(DefaultIdleThreshold)
	if sess.State() != StateAbandoned || !sess.Closed() {
		t.Errorf("State() = %v, Closed() = %v, want abandoned and closed", sess.State(), sess.Closed())
	}
	if len(h.leaves) != 2 {
		t.Errorf("onLeave calls = %d, want 2", len(h.leaves))
	}
	if b.Active() != nil {
		t.Error("slot still held after idle teardown")
	}
	if st := b.Stats(); st.Abandoned != 1 {
		t.Errorf("Stats().Abandoned = %d, want 1", st.Abandoned)
	}
	h.assertNoLeaks(baseline)
}

func TestDestroyDuringLeave(t *testing.T) {
	h := newHarness(t)
	trigger, _ := single(h)
	cfg := h.config()
	var b *Binding
	cfg.OnLeave = func(_ *surface.Event, _, trigger *surface.Element) {
		h.leaves = append(h.leaves, trigger.ID)
		b.Destroy()
	}
	b = h.bind(cfg, trigger)

	var topics []string
	sub, err := h.s.Signals().Subscribe("intent.session.*", func(_ context.Context, sig event.Signal) error {
		topics = append(topics, sig.Topic.String())
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	h.activate(0, 0)
	sess := b.Active()
	h.move(10, 0)
	h.move(10, 200)
	sub.Cancel()

	if sess.State() != StateCancelled {
		t.Errorf("State() = %v, want %v", sess.State(), StateCancelled)
	}
	if st := b.Stats(); st.Cancelled != 1 || st.Abandoned != 0 {
		t.Errorf("Stats() cancelled/abandoned = %d/%d, want 1/0", st.Cancelled, st.Abandoned)
	}
	want := []string{"intent.session.started", "intent.session.cancelled"}
	if len(topics) != len(want) || topics[0] != want[0] || topics[1] != want[1] {
		t.Errorf("topics = %v, want %v", topics, want)
	}
	h.assertNoLeaks(0)
}
