package event

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTopic         = errors.New("invalid topic")
	ErrWildcardPublish      = errors.New("wildcard topics cannot be published")
	ErrNilHandler           = errors.New("nil handler")
	ErrSubscriptionNotFound = errors.New("no such subscription")

	// ErrHandlerPanic matches any *PanicError under errors.Is.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError is reported when a handler returns an error. Delivery to the
// remaining subscribers continues.
type HandlerError struct {
	SubscriptionID string
	Topic          string
	Err            error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: subscriber %s: %v", e.Topic, e.SubscriptionID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError is reported when a handler panics. Stack is captured at the
// point of recovery.
type PanicError struct {
	SubscriptionID string
	Topic          string
	Value          any
	Stack          string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: subscriber %s panicked: %v", e.Topic, e.SubscriptionID, e.Value)
}

func (e *PanicError) Is(target error) bool { return target == ErrHandlerPanic }
