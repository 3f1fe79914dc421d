// Package plugin adapts user Lua scripts into intent callbacks.
//
// A hook script may define two global functions:
//
//	function on_hover(e)
//	  return e.trigger == "help"   -- true prevents the default behavior
//	end
//
//	function on_leave(e)
//	end
//
// Each receives a table with the fields kind, target, trigger, x, y,
// scroll_y and synthetic, plus name for signal events. target and trigger
// are element IDs.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/hoverintent/internal/intent"
	plua "github.com/dshills/hoverintent/internal/plugin/lua"
	"github.com/dshills/hoverintent/internal/surface"
	lua "github.com/yuin/gopher-lua"
)

// Hook names.
const (
	HookHover = "on_hover"
	HookLeave = "on_leave"
)

// ErrNoHooks is returned when a script defines neither hook.
var ErrNoHooks = errors.New("script defines no hooks")

// ScriptError reports a failing hook call.
type ScriptError struct {
	Hook string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("hook %s: %v", e.Hook, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Hooks holds a loaded hook script. Reload swaps the script in place, so
// callbacks created before a reload call the new script.
type Hooks struct {
	mu     sync.Mutex
	state  *plua.State
	source string
	opts   []plua.StateOption
	logger *slog.Logger
}

// Option configures Hooks.
type Option func(*Hooks)

// WithLogger sets the logger for script errors.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hooks) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStateOptions passes options to every Lua state the hooks create.
func WithStateOptions(opts ...plua.StateOption) Option {
	return func(h *Hooks) {
		h.opts = append(h.opts, opts...)
	}
}

// Load runs the script at path and returns its hooks.
func Load(path string, opts ...Option) (*Hooks, error) {
	h := newHooks(opts)
	if err := h.Reload(path); err != nil {
		return nil, err
	}
	return h, nil
}

// FromString runs code and returns its hooks.
func FromString(code string, opts ...Option) (*Hooks, error) {
	h := newHooks(opts)
	state, err := h.compile(func(s *plua.State) error { return s.DoString(code) })
	if err != nil {
		return nil, err
	}
	h.state = state
	h.source = "<string>"
	return h, nil
}

func newHooks(opts []Option) *Hooks {
	h := &Hooks{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "hooks")
	return h
}

// Reload runs the script at path in a fresh state and replaces the current
// one. On error the current script stays in place.
func (h *Hooks) Reload(path string) error {
	state, err := h.compile(func(s *plua.State) error { return s.DoFile(path) })
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	h.mu.Lock()
	old := h.state
	h.state = state
	h.source = path
	h.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	h.logger.Info("hooks loaded", "path", path, "hover", state.HasFunction(HookHover), "leave", state.HasFunction(HookLeave))
	return nil
}

func (h *Hooks) compile(run func(*plua.State) error) (*plua.State, error) {
	state := plua.NewState(h.opts...)
	if err := run(state); err != nil {
		_ = state.Close()
		return nil, err
	}
	if !state.HasFunction(HookHover) && !state.HasFunction(HookLeave) {
		_ = state.Close()
		return nil, ErrNoHooks
	}
	return state, nil
}

// Source returns the path of the loaded script.
func (h *Hooks) Source() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.source
}

// Close releases the script.
func (h *Hooks) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == nil {
		return nil
	}
	err := h.state.Close()
	h.state = nil
	return err
}

// Call runs the named hook and reports whether it asked to prevent the
// default behavior. A script without the hook returns false.
func (h *Hooks) Call(hook string, evt *surface.Event, target, trigger *surface.Element) (bool, error) {
	h.mu.Lock()
	state := h.state
	h.mu.Unlock()

	if state == nil || !state.HasFunction(hook) {
		return false, nil
	}

	rets, err := state.Call(hook, eventTable(state.NewTable(), evt, target, trigger))
	if err != nil {
		return false, &ScriptError{Hook: hook, Err: err}
	}
	return len(rets) > 0 && lua.LVAsBool(rets[0]), nil
}

// OnHover returns a callback running on_hover.
func (h *Hooks) OnHover() intent.Callback {
	return h.callback(HookHover)
}

// OnLeave returns a callback running on_leave.
func (h *Hooks) OnLeave() intent.Callback {
	return h.callback(HookLeave)
}

// Chain returns a callback that runs the hook first and then next, unless
// the hook prevented the default.
func (h *Hooks) Chain(hook string, next intent.Callback) intent.Callback {
	cb := h.callback(hook)
	if next == nil {
		return cb
	}
	return func(evt *surface.Event, target, trigger *surface.Element) {
		cb(evt, target, trigger)
		if evt.DefaultPrevented() {
			return
		}
		next(evt, target, trigger)
	}
}

func (h *Hooks) callback(hook string) intent.Callback {
	return func(evt *surface.Event, target, trigger *surface.Element) {
		prevent, err := h.Call(hook, evt, target, trigger)
		if err != nil {
			h.logger.Warn("hook failed", "hook", hook, "error", err)
			return
		}
		if prevent {
			evt.PreventDefault()
		}
	}
}

func eventTable(t *lua.LTable, evt *surface.Event, target, trigger *surface.Element) *lua.LTable {
	t.RawSetString("kind", lua.LString(evt.Kind.String()))
	t.RawSetString("x", lua.LNumber(evt.Position.X))
	t.RawSetString("y", lua.LNumber(evt.Position.Y))
	t.RawSetString("scroll_y", lua.LNumber(evt.ScrollY))
	t.RawSetString("synthetic", lua.LBool(evt.Synthetic))
	if evt.Name != "" {
		t.RawSetString("name", lua.LString(evt.Name))
	}
	if target != nil {
		t.RawSetString("target", lua.LString(target.ID))
	}
	if trigger != nil {
		t.RawSetString("trigger", lua.LString(trigger.ID))
	}
	return t
}
