package app

import (
	"errors"
	"fmt"
)

// ErrRootNotFound is returned when a binding names a root element that is
// not on the surface.
var ErrRootNotFound = errors.New("root element not found")

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// BindError reports a configured binding that could not be installed.
type BindError struct {
	Binding string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding %q: %v", e.Binding, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
