package event

import "context"

// Priority orders delivery within one publish. Lower runs first; equal
// priorities run in subscription order.
type Priority int

const (
	PriorityCritical Priority = 0
	PriorityHigh     Priority = 100
	// PriorityNormal is the default and what intent sessions subscribe at.
	PriorityNormal Priority = 200
	// PriorityLow suits observers such as the demo's status line.
	PriorityLow Priority = 300
)

var priorityBands = []struct {
	max  Priority
	name string
}{
	{PriorityCritical, "critical"},
	{PriorityHigh, "high"},
	{PriorityNormal, "normal"},
}

func (p Priority) String() string {
	for _, b := range priorityBands {
		if p <= b.max {
			return b.name
		}
	}
	return "low"
}

// HandlerFunc receives a signal. A returned error is reported and does not
// stop delivery.
type HandlerFunc func(ctx context.Context, sig Signal) error

// Stats is a snapshot of bus counters.
type Stats struct {
	SignalsPublished  uint64
	HandlersExecuted  uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// ErrorHandler receives a *HandlerError or *PanicError for each failed
// delivery.
type ErrorHandler func(sig Signal, err error)
