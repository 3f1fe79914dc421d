package intent

// State is the state of an intent session.
type State uint8

const (
	// StateTracking is the initial state: the pointer is in transit and
	// samples are tested against the intent cone.
	StateTracking State = iota + 1

	// StateCommitted means the pointer reached the target. The session stays
	// open until the target is left.
	StateCommitted

	// StateAbandoned means the pointer left the cone, went idle, or a forced
	// leave arrived before the target was reached.
	StateAbandoned

	// StateCancelled means the binding was destroyed while the session was open.
	StateCancelled
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateTracking:
		return "tracking"
	case StateCommitted:
		return "committed"
	case StateAbandoned:
		return "abandoned"
	case StateCancelled:
		return "cancelled"
	default:
		return "none"
	}
}
