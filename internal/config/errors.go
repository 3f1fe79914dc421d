package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationFailed matches every *ValidationError and ValidationErrors.
	ErrValidationFailed = errors.New("invalid configuration")

	ErrBindingNotFound = errors.New("binding not found")
)

// ValidationErrorCode classifies a failed setting.
type ValidationErrorCode string

const (
	ErrCodeTypeMismatch    ValidationErrorCode = "type_mismatch"
	ErrCodeOutOfRange      ValidationErrorCode = "out_of_range"
	ErrCodeInvalidEnum     ValidationErrorCode = "invalid_enum"
	ErrCodePatternMismatch ValidationErrorCode = "pattern_mismatch"
	ErrCodeRequiredMissing ValidationErrorCode = "required_missing"
	ErrCodeDuplicate       ValidationErrorCode = "duplicate"
)

func (c ValidationErrorCode) String() string { return string(c) }

// ValidationError reports one bad setting. Path uses the file's key names,
// for example "binding[0].move_threshold".
type ValidationError struct {
	Path    string
	Message string
	Value   any
	Code    ValidationErrorCode
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Path, e.Value, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// ValidationErrors is every failure found by one Validate call, in the order
// the settings were checked.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (es ValidationErrors) Is(target error) bool { return target == ErrValidationFailed }

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(es))
	for _, e := range es {
		out = append(out, e)
	}
	return out
}
