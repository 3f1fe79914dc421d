package intent

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/hoverintent/internal/event/topic"
	"github.com/dshills/hoverintent/internal/surface"
)

// Default configuration values.
const (
	DefaultAttr            = "intent-target"
	DefaultMoveThreshold   = 150 * time.Millisecond
	DefaultIdleThreshold   = 1500 * time.Millisecond
	DefaultActivationDelay = 120 * time.Millisecond

	DefaultForceLeaveTopic topic.Topic = "intent.leave"
)

// Callback is invoked on hover begin and on leave. Calling
// evt.PreventDefault suppresses the session's default follow-on behavior
// for that path.
type Callback func(evt *surface.Event, target, trigger *surface.Element)

// Config configures a Binding.
// Zero values are replaced by the defaults above.
type Config struct {
	// OnHover runs once when a session starts.
	OnHover Callback

	// OnLeave runs at most once when a session ends.
	OnLeave Callback

	// Attr is the trigger data attribute holding the target element's ID.
	Attr string

	// Selector picks which elements inside a root act as triggers.
	// When nil, each bound root is itself the trigger.
	Selector surface.Matcher

	// MoveThreshold is the minimum interval between processed pointer samples.
	MoveThreshold time.Duration

	// IdleThreshold is how long the pointer may rest before the session is abandoned.
	IdleThreshold time.Duration

	// ScrollThreshold is the scroll displacement that forces every session to
	// leave. Zero means one tenth of the viewport height at the time of the
	// scroll, at least 1.
	ScrollThreshold float64

	// ForceLeaveTopic is the broadcast topic that forces sessions to leave.
	ForceLeaveTopic topic.Topic

	// ActivationDelay debounces trigger activation.
	ActivationDelay time.Duration

	// Logger receives lifecycle logs at debug level.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Attr:            DefaultAttr,
		MoveThreshold:   DefaultMoveThreshold,
		IdleThreshold:   DefaultIdleThreshold,
		ForceLeaveTopic: DefaultForceLeaveTopic,
		ActivationDelay: DefaultActivationDelay,
	}
}

// resolve validates c and fills in defaults.
func (c Config) resolve(hasRoots bool) (Config, error) {
	switch {
	case c.MoveThreshold < 0:
		return c, fmt.Errorf("move threshold %v: %w", c.MoveThreshold, ErrInvalidConfig)
	case c.IdleThreshold < 0:
		return c, fmt.Errorf("idle threshold %v: %w", c.IdleThreshold, ErrInvalidConfig)
	case c.ActivationDelay < 0:
		return c, fmt.Errorf("activation delay %v: %w", c.ActivationDelay, ErrInvalidConfig)
	case c.ScrollThreshold < 0:
		return c, fmt.Errorf("scroll threshold %v: %w", c.ScrollThreshold, ErrInvalidConfig)
	case !hasRoots && c.Selector == nil:
		return c, fmt.Errorf("selector is required when no roots are given: %w", ErrInvalidConfig)
	}

	if c.OnHover == nil {
		c.OnHover = func(*surface.Event, *surface.Element, *surface.Element) {}
	}
	if c.OnLeave == nil {
		c.OnLeave = func(*surface.Event, *surface.Element, *surface.Element) {}
	}
	if c.Attr == "" {
		c.Attr = DefaultAttr
	}
	if c.MoveThreshold == 0 {
		c.MoveThreshold = DefaultMoveThreshold
	}
	if c.IdleThreshold == 0 {
		c.IdleThreshold = DefaultIdleThreshold
	}
	if c.ActivationDelay == 0 {
		c.ActivationDelay = DefaultActivationDelay
	}
	if c.ForceLeaveTopic == "" {
		c.ForceLeaveTopic = DefaultForceLeaveTopic
	}
	if !c.ForceLeaveTopic.IsValid() || c.ForceLeaveTopic.IsWildcard() {
		return c, fmt.Errorf("force leave topic %q: %w", c.ForceLeaveTopic, ErrInvalidConfig)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}
