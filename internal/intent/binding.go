package intent

import (
	"context"
	"log/slog"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/event"
	"github.com/dshills/hoverintent/internal/event/topic"
	"github.com/dshills/hoverintent/internal/geom"
	"github.com/dshills/hoverintent/internal/surface"
)

// Surface is what a Binding needs from the host element tree.
// *surface.Surface implements it.
type Surface interface {
	// Lookup resolves a target identifier.
	Lookup(id string) *surface.Element
	// BoundingBox reads an element's viewport rectangle. Detached elements
	// yield a zero Rect.
	BoundingBox(el *surface.Element) geom.Rect
	// Hovered reports whether the pointer is over el or one of its descendants.
	Hovered(el *surface.Element) bool
	// ScrollY returns the vertical scroll offset.
	ScrollY() float64
	// Size returns the viewport size.
	Size() (width, height float64)
	// On registers a surface-level listener.
	On(kind surface.Kind, fn surface.Listener) (remove func())
	// Dispatch delivers an event at its target.
	Dispatch(evt *surface.Event)
	// Signals returns the broadcast bus.
	Signals() *event.Bus
	// Scheduler returns the scheduler that runs timers on the dispatch thread.
	Scheduler() clock.Scheduler
}

// Lifecycle topics published on the surface bus.
const (
	TopicSessionStarted   topic.Topic = "intent.session.started"
	TopicSessionCommitted topic.Topic = "intent.session.committed"
	TopicSessionAbandoned topic.Topic = "intent.session.abandoned"
	TopicSessionLeft      topic.Topic = "intent.session.left"
	TopicSessionCancelled topic.Topic = "intent.session.cancelled"

	TopicActivationCached   topic.Topic = "intent.activation.cached"
	TopicActivationReplayed topic.Topic = "intent.activation.replayed"
)

const signalSource = "intent"

// SessionInfo is the payload of lifecycle signals.
type SessionInfo struct {
	ID      string
	Trigger string
	Target  string
	State   State
}

// Stats counts binding activity.
type Stats struct {
	Started    int
	Suppressed int
	Committed  int
	Abandoned  int
	Left       int
	Cancelled  int
	Cached     int
	Replayed   int
	Discarded  int
	NoTarget   int
}

// Binding arbitrates intent sessions for a set of triggers.
//
// At most one session is tracking at any time. An activation that arrives
// while a session is tracking is cached, replacing any earlier cached
// activation, and replayed once the blocking session finishes.
type Binding struct {
	surface Surface
	config  Config
	logger  *slog.Logger

	selector surface.Matcher
	roots    []*surface.Element
	unbind   []func()

	pending map[*surface.Element]*pendingActivation
	active  *Session
	cache   *cachedActivation
	open    []*Session

	stats     Stats
	destroyed bool
}

// pendingActivation is an activation waiting out the debounce delay.
type pendingActivation struct {
	timer       clock.Timer
	removeLeave func()
}

// cachedActivation is an activation blocked by the single-flight slot.
type cachedActivation struct {
	evt         *surface.Event
	trigger     *surface.Element
	removeLeave func()
}

// Bind starts listening for trigger activations under roots.
//
// With no roots, over events are observed surface-wide and cfg.Selector is
// required. With roots and no selector, each root is itself a trigger.
func Bind(s Surface, cfg Config, roots ...*surface.Element) (*Binding, error) {
	if s == nil {
		return nil, ErrNoSurface
	}

	var live []*surface.Element
	for _, r := range roots {
		if r != nil {
			live = append(live, r)
		}
	}

	resolved, err := cfg.resolve(len(live) > 0)
	if err != nil {
		return nil, err
	}

	b := &Binding{
		surface:  s,
		config:   resolved,
		logger:   resolved.Logger.With("component", "intent"),
		selector: resolved.Selector,
		roots:    live,
		pending:  make(map[*surface.Element]*pendingActivation),
	}

	if len(live) == 0 {
		b.unbind = append(b.unbind, s.On(surface.KindOver, func(evt *surface.Event) {
			b.onOver(evt, nil)
		}))
	}
	for _, root := range live {
		b.unbind = append(b.unbind, root.On(surface.KindOver, func(evt *surface.Event) {
			b.onOver(evt, root)
		}))
	}

	b.logger.Debug("bound", "roots", len(live), "selector", b.selector != nil)
	return b, nil
}

// Config returns the resolved configuration.
func (b *Binding) Config() Config {
	return b.config
}

// Active returns the tracking session, or nil when the slot is free.
func (b *Binding) Active() *Session {
	return b.active
}

// Sessions returns every session that has not been torn down. At most one
// is tracking; the others are committed and waiting for their target to be
// left.
func (b *Binding) Sessions() []*Session {
	out := make([]*Session, len(b.open))
	copy(out, b.open)
	return out
}

// Cached returns the trigger of the cached activation, if any.
func (b *Binding) Cached() (*surface.Element, bool) {
	if b.cache == nil {
		return nil, false
	}
	return b.cache.trigger, true
}

// Stats returns activity counters.
func (b *Binding) Stats() Stats {
	return b.stats
}

// Destroy removes every listener the binding added, drops pending and cached
// activations, and cancels open sessions without running callbacks.
// Calling Destroy more than once is safe.
func (b *Binding) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true

	for _, fn := range b.unbind {
		fn()
	}
	b.unbind = nil

	for trigger, p := range b.pending {
		clock.Stop(p.timer)
		p.removeLeave()
		delete(b.pending, trigger)
	}
	b.clearCache()

	open := b.open
	b.open = nil
	b.active = nil
	for _, s := range open {
		s.cancel()
		b.stats.Cancelled++
		b.publish(TopicSessionCancelled, s)
	}
	b.logger.Debug("destroyed", "cancelled", len(open))
}

// onOver qualifies an over event and debounces it.
func (b *Binding) onOver(evt *surface.Event, root *surface.Element) {
	if b.destroyed {
		return
	}
	trigger := evt.Target
	if trigger == nil || !b.qualifies(trigger, root) {
		return
	}

	if p, ok := b.pending[trigger]; ok {
		clock.Stop(p.timer)
		p.removeLeave()
	}

	p := &pendingActivation{}
	p.removeLeave = trigger.On(surface.KindLeave, func(*surface.Event) {
		if b.pending[trigger] != p {
			return
		}
		clock.Stop(p.timer)
		p.removeLeave()
		delete(b.pending, trigger)
	})
	p.timer = b.surface.Scheduler().AfterFunc(b.config.ActivationDelay, func() {
		if b.pending[trigger] != p {
			return
		}
		p.removeLeave()
		delete(b.pending, trigger)
		b.activate(evt, trigger)
	})
	b.pending[trigger] = p
}

func (b *Binding) qualifies(trigger, root *surface.Element) bool {
	if b.selector == nil {
		return trigger == root
	}
	if !b.selector(trigger) {
		return false
	}
	return root == nil || root.Contains(trigger)
}

// activate starts a session for trigger or caches the activation when the
// single-flight slot is taken.
func (b *Binding) activate(evt *surface.Event, trigger *surface.Element) {
	if b.destroyed {
		return
	}
	if b.active != nil {
		b.store(evt, trigger)
		return
	}

	id, _ := trigger.Data(b.config.Attr)
	target := b.surface.Lookup(id)
	if target == nil {
		b.stats.NoTarget++
		b.logger.Debug("no target", "trigger", trigger.ID, "attr", b.config.Attr, "value", id)
		return
	}

	s := newSession(b, trigger, target, evt)
	b.active = s
	b.open = append(b.open, s)

	// A panicking OnHover still propagates, but must not keep the slot.
	returned := false
	defer func() {
		if !returned {
			b.logger.Warn("hover callback panicked", "session", s.id, "trigger", trigger.ID)
			s.state = StateCancelled
			s.teardown()
			b.release(s)
		}
	}()
	ok := s.start()
	returned = true

	if s.closed {
		// OnHover destroyed the binding.
		return
	}
	if !ok {
		b.stats.Suppressed++
		b.logger.Debug("hover suppressed", "session", s.id, "trigger", trigger.ID)
		s.teardown()
		b.finished(s)
		return
	}

	b.stats.Started++
	b.logger.Debug("session started", "session", s.id, "trigger", trigger.ID, "target", target.ID)
	b.publish(TopicSessionStarted, s)
}

// store caches evt, overwriting any earlier cached activation.
func (b *Binding) store(evt *surface.Event, trigger *surface.Element) {
	b.clearCache()

	c := &cachedActivation{evt: evt, trigger: trigger}
	c.removeLeave = trigger.On(surface.KindLeave, func(*surface.Event) {
		if b.cache != c {
			return
		}
		b.stats.Discarded++
		b.logger.Debug("cached activation discarded", "trigger", trigger.ID)
		b.clearCache()
	})
	b.cache = c

	b.stats.Cached++
	b.logger.Debug("activation cached", "trigger", trigger.ID)
	b.publishActivation(TopicActivationCached, trigger)
}

func (b *Binding) clearCache() {
	if b.cache == nil {
		return
	}
	b.cache.removeLeave()
	b.cache = nil
}

// committed releases the single-flight slot held by s.
func (b *Binding) committed(s *Session) {
	if b.active == s {
		b.active = nil
	}
	b.stats.Committed++
	b.logger.Debug("session committed", "session", s.id, "target", s.target.ID)
	b.publish(TopicSessionCommitted, s)
}

// finished forgets a torn-down session and replays the cached activation
// once the slot is free.
func (b *Binding) finished(s *Session) {
	b.release(s)

	switch {
	case s.state == StateAbandoned:
		b.stats.Abandoned++
		b.logger.Debug("session abandoned", "session", s.id)
		b.publish(TopicSessionAbandoned, s)
	case s.state == StateCommitted:
		b.stats.Left++
		b.logger.Debug("session left", "session", s.id)
		b.publish(TopicSessionLeft, s)
	}

	if b.active == nil && b.cache != nil && !b.destroyed {
		b.replay()
	}
}

// scrollThreshold is the configured threshold, or one tenth of the current
// viewport height when none was set.
func (b *Binding) scrollThreshold() float64 {
	if t := b.config.ScrollThreshold; t > 0 {
		return t
	}
	_, h := b.surface.Size()
	return max(h/10, 1)
}

// release drops s from the open list and frees the slot if s holds it.
func (b *Binding) release(s *Session) {
	for i, other := range b.open {
		if other == s {
			b.open = append(b.open[:i], b.open[i+1:]...)
			break
		}
	}
	if b.active == s {
		b.active = nil
	}
}

// replay re-dispatches the cached activation at its trigger. The synthetic
// event goes through the debounce like a live one.
func (b *Binding) replay() {
	c := b.cache
	b.clearCache()

	b.stats.Replayed++
	b.logger.Debug("replaying activation", "trigger", c.trigger.ID)
	b.publishActivation(TopicActivationReplayed, c.trigger)

	b.surface.Dispatch(c.evt.Replay(b.surface.Scheduler().Now()))
}

func (b *Binding) publish(t topic.Topic, s *Session) {
	b.emit(t, SessionInfo{
		ID:      s.id,
		Trigger: s.trigger.ID,
		Target:  s.target.ID,
		State:   s.state,
	}, s.id)
}

func (b *Binding) publishActivation(t topic.Topic, trigger *surface.Element) {
	b.emit(t, SessionInfo{Trigger: trigger.ID}, "")
}

func (b *Binding) emit(t topic.Topic, payload SessionInfo, causation string) {
	sig := event.NewSignal(t, payload, signalSource)
	if causation != "" {
		sig = sig.WithCausation(causation)
	}
	if err := b.surface.Signals().Publish(context.Background(), sig); err != nil {
		b.logger.Warn("publish failed", "topic", t, "error", err)
	}
}
