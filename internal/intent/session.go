package intent

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/event"
	"github.com/dshills/hoverintent/internal/geom"
	"github.com/dshills/hoverintent/internal/surface"
	"github.com/dshills/hoverintent/internal/throttle"
)

// Session tracks one trigger-to-target transit.
//
// A session starts in StateTracking. Once the pointer leaves the trigger,
// every throttled pointer sample is tested against the current intent cone:
// a sample inside rebuilds the cone with the sample as apex, a sample outside
// abandons the session. Entering the target commits it; the session then
// stays open until the target is left. Idle time and scroll displacement
// abandon a tracking session even when the geometry would not.
type Session struct {
	id         string
	binding    *Binding
	trigger    *surface.Element
	target     *surface.Element
	activation *surface.Event

	state    State
	closed   bool
	left     bool
	tracking bool

	triangle    geom.Triangle
	lastScrollY float64
	lastEvent   *surface.Event

	moves *throttle.Throttle[*surface.Event]
	idle  clock.Timer

	// transit holds resources needed only while tracking toward the target.
	transit resources
	// lifetime holds resources held until the session is torn down.
	lifetime resources
}

// resources is a list of release functions run once, in order.
type resources []func()

func (r *resources) add(fn func()) {
	*r = append(*r, fn)
}

func (r *resources) release() {
	list := *r
	*r = nil
	for _, fn := range list {
		fn()
	}
}

func newSession(b *Binding, trigger, target *surface.Element, activation *surface.Event) *Session {
	return &Session{
		id:         uuid.NewString(),
		binding:    b,
		trigger:    trigger,
		target:     target,
		activation: activation,
		state:      StateTracking,
		lastEvent:  activation,
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Trigger returns the element that started the session.
func (s *Session) Trigger() *surface.Element { return s.trigger }

// Target returns the element the pointer may be moving toward.
func (s *Session) Target() *surface.Element { return s.target }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.closed }

// Left reports whether the leave callback has run to completion.
func (s *Session) Left() bool { return s.left }

// Triangle returns the current intent cone.
// The second result is false until the pointer has left the trigger.
func (s *Session) Triangle() (geom.Triangle, bool) {
	return s.triangle, s.tracking
}

// start runs the hover callback and installs session-lifetime listeners.
// It returns false if the callback suppressed the activation.
func (s *Session) start() bool {
	host := s.binding.surface
	cfg := &s.binding.config

	evt := s.activation.Fork()
	cfg.OnHover(evt, s.target, s.trigger)
	if s.closed || evt.DefaultPrevented() {
		return false
	}

	s.lastScrollY = host.ScrollY()

	sub, err := host.Signals().Subscribe(cfg.ForceLeaveTopic, s.onForceLeave)
	if err != nil {
		s.binding.logger.Warn("force leave subscription failed", "session", s.id, "error", err)
	} else {
		s.lifetime.add(sub.Cancel)
	}
	s.lifetime.add(host.On(surface.KindScroll, s.onScroll))

	removeTriggerLeave := s.trigger.On(surface.KindLeave, s.onTriggerLeave)
	s.transit.add(removeTriggerLeave)

	if !host.Hovered(s.trigger) {
		s.onTriggerLeave(s.activation)
	}
	return true
}

// onTriggerLeave begins geometric tracking toward the target.
func (s *Session) onTriggerLeave(evt *surface.Event) {
	if s.state != StateTracking || s.tracking {
		return
	}
	host := s.binding.surface
	cfg := &s.binding.config
	s.tracking = true

	s.lifetime.add(s.target.On(surface.KindLeave, s.onTargetLeave))
	s.transit.add(s.target.On(surface.KindEnter, s.onTargetEnter))

	s.triangle = geom.NewTriangle(host.BoundingBox(s.target), s.activation.Position)

	s.moves = throttle.New(host.Scheduler(), cfg.MoveThreshold, s.sample)
	s.transit.add(host.On(surface.KindMove, func(e *surface.Event) { s.moves.Call(e) }))
	s.transit.add(s.moves.Cancel)
	s.transit.add(func() { clock.Stop(s.idle) })
	s.armIdle(evt)

	if host.Hovered(s.target) {
		s.onTargetEnter(evt)
	}
}

// sample processes one pointer sample that passed the rate limiter.
func (s *Session) sample(evt *surface.Event) {
	if s.state != StateTracking || s.closed {
		return
	}
	host := s.binding.surface

	s.lastScrollY = host.ScrollY()
	s.lastEvent = evt
	s.armIdle(evt)

	p := evt.Position
	if s.triangle.Contains(p) {
		s.triangle = geom.NewTriangle(host.BoundingBox(s.target), p)
		return
	}
	s.abandon(evt)
}

func (s *Session) armIdle(evt *surface.Event) {
	clock.Stop(s.idle)
	s.idle = s.binding.surface.Scheduler().AfterFunc(s.binding.config.IdleThreshold, func() {
		s.idle = nil
		s.abandon(evt)
	})
}

// onTargetEnter commits the session: geometric tracking stops and the
// single-flight slot is released.
func (s *Session) onTargetEnter(*surface.Event) {
	if s.state != StateTracking || s.closed {
		return
	}
	s.state = StateCommitted
	s.transit.release()
	s.binding.committed(s)
}

// onTargetLeave ends a committed session.
func (s *Session) onTargetLeave(evt *surface.Event) {
	if s.state != StateCommitted || s.closed {
		return
	}
	if !s.leave(evt) {
		return
	}
	s.finish()
}

// abandon ends a tracking session that lost its intent.
// A leave callback that suppresses the event keeps the session tracking.
func (s *Session) abandon(evt *surface.Event) {
	if s.state != StateTracking || s.closed {
		return
	}
	if !s.leave(evt) {
		return
	}
	s.state = StateAbandoned
	s.finish()
}

// onScroll raises the forced-leave broadcast once the viewport has scrolled
// far enough to make recorded coordinates stale.
func (s *Session) onScroll(evt *surface.Event) {
	if s.closed {
		return
	}
	if math.Abs(evt.ScrollY-s.lastScrollY) < s.binding.scrollThreshold() {
		return
	}
	sig := event.NewSignal(s.binding.config.ForceLeaveTopic, evt.ScrollY, signalSource).WithCausation(s.id)
	if err := s.binding.surface.Signals().Publish(context.Background(), sig); err != nil {
		s.binding.logger.Warn("force leave publish failed", "session", s.id, "error", err)
	}
}

// onForceLeave runs the leave path for any open session.
func (s *Session) onForceLeave(_ context.Context, sig event.Signal) error {
	if s.closed {
		return nil
	}
	evt := &surface.Event{
		Kind:     surface.KindSignal,
		Name:     sig.Topic.String(),
		Position: s.lastEvent.Position,
		ScrollY:  s.binding.surface.ScrollY(),
		Time:     s.binding.surface.Scheduler().Now(),
	}
	if !s.leave(evt) {
		return nil
	}
	if s.state == StateTracking {
		s.state = StateAbandoned
	}
	s.finish()
	return nil
}

// leave runs the leave callback at most once. It returns false when the
// callback suppressed the event or destroyed the binding, in which case the
// caller must not tear down.
func (s *Session) leave(evt *surface.Event) bool {
	if s.left {
		return true
	}
	cb := evt.Fork()
	s.binding.config.OnLeave(cb, s.target, s.trigger)
	if s.closed || cb.DefaultPrevented() {
		return false
	}
	s.left = true
	return true
}

func (s *Session) finish() {
	s.teardown()
	s.binding.finished(s)
}

// cancel tears the session down without callbacks.
func (s *Session) cancel() {
	if s.closed {
		return
	}
	s.state = StateCancelled
	s.teardown()
}

// teardown releases every resource the session acquired. Idempotent.
func (s *Session) teardown() {
	s.closed = true
	s.transit.release()
	s.lifetime.release()
}
