package event

import (
	"sync/atomic"

	"github.com/dshills/hoverintent/internal/event/topic"
)

// Subscription is a registered handler on a Bus.
type Subscription struct {
	id      string
	seq     uint64
	pattern topic.Topic
	handler HandlerFunc
	config  SubscriptionConfig

	bus       *Bus
	cancelled atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() topic.Topic {
	return s.pattern
}

// IsActive returns true if the subscription can receive signals.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Cancel removes the subscription from its bus.
// It is safe to call more than once and from inside a handler;
// a cancelled subscription receives no further signals.
func (s *Subscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	s.bus.remove(s)
}
