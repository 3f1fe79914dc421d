package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one DoString, DoFile or Call.
const DefaultExecutionTimeout = 50 * time.Millisecond

// blockedGlobals can load code or reach the file system.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// State is a sandboxed interpreter for hook scripts. Only the base, table,
// string and math libraries are opened. An LState is not goroutine-safe,
// so every method takes the lock.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

type StateOption func(*State)

// WithExecutionTimeout sets the per-execution budget. Zero means no limit.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(s)
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	s.L = L
	return s
}

func (s *State) DoFile(path string) error {
	return s.exec(func(L *lua.LState) error { return L.DoFile(path) })
}

func (s *State) DoString(code string) error {
	return s.exec(func(L *lua.LState) error { return L.DoString(code) })
}

// HasFunction reports whether the global name holds a function.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call invokes the global function fn and returns all of its results. A
// function returning nothing yields an empty, non-nil slice.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	var out []lua.LValue
	err := s.exec(func(L *lua.LState) error {
		f := L.GetGlobal(fn)
		if f.Type() != lua.LTFunction {
			return fmt.Errorf("%q (%s): %w", fn, f.Type(), ErrNotFunction)
		}
		base := L.GetTop()
		if err := L.CallByParam(lua.P{Fn: f, NRet: lua.MultRet, Protect: true}, args...); err != nil {
			L.SetTop(base)
			return err
		}
		n := L.GetTop() - base
		out = make([]lua.LValue, 0, max(n, 0))
		for i := 1; i <= n; i++ {
			out = append(out, L.Get(base+i))
		}
		L.SetTop(base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewTable allocates a table in this state.
func (s *State) NewTable() *lua.LTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.L.NewTable()
}

func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. Later calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.L.Close()
	}
	return nil
}

// exec runs fn holding the lock, under the execution budget, converting a
// Go panic raised inside the interpreter into an error.
func (s *State) exec(fn func(*lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			cancel()
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
			}
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn(s.L)
}
