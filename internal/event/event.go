package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/hoverintent/internal/event/topic"
)

// Signal is a broadcast notification.
// Signals are immutable once created.
type Signal struct {
	// Topic is the hierarchical signal name (e.g., "intent.leave").
	Topic topic.Topic

	// Payload carries signal-specific data. May be nil.
	Payload any

	// Metadata contains standard signal information.
	Metadata Metadata
}

// Metadata contains standard information attached to every signal.
type Metadata struct {
	// ID is a unique identifier for this signal instance.
	ID string

	// Timestamp is when the signal was created.
	Timestamp time.Time

	// Source identifies the component that published the signal.
	Source string

	// CausationID links to the session or signal that caused this one.
	CausationID string
}

// NewSignal creates a signal with the given topic and payload.
func NewSignal(t topic.Topic, payload any, source string) Signal {
	return Signal{
		Topic:   t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// WithCausation returns a copy of the signal with a causation ID set.
func (s Signal) WithCausation(causationID string) Signal {
	s.Metadata.CausationID = causationID
	return s
}
