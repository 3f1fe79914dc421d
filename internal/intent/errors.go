package intent

import "errors"

// Sentinel errors returned by Bind.
var (
	// ErrNoSurface is returned when Bind is called without a surface.
	ErrNoSurface = errors.New("intent: surface is nil")

	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("intent: invalid config")
)
