package lua

import "errors"

var (
	// ErrStateClosed is returned by every call made after Close.
	ErrStateClosed = errors.New("hook interpreter closed")

	// ErrExecutionTimeout wraps the interpreter error when a script runs past
	// its execution budget.
	ErrExecutionTimeout = errors.New("hook script exceeded its time budget")

	// ErrNotFunction is returned when Call names a global holding a
	// non-function value.
	ErrNotFunction = errors.New("global is not callable")
)
