package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrRunAborted is matched by every harness-level failure.
	ErrRunAborted = errors.New("run aborted")

	// ErrTimeout means the overall run timeout elapsed before all iterations finished.
	ErrTimeout = errors.New("run timeout exceeded")

	// ErrTargetUnreachable means no request reached the target at all.
	ErrTargetUnreachable = errors.New("target unreachable")
)

// AbortError is returned by Run when the harness itself failed, as opposed to
// individual samples failing. It matches ErrRunAborted and its Cause.
type AbortError struct {
	Cause error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRunAborted, e.Cause)
}

// Unwrap exposes both ErrRunAborted and the cause to errors.Is.
func (e *AbortError) Unwrap() []error {
	return []error{ErrRunAborted, e.Cause}
}

// ValidationError represents a runner configuration error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error on field '" + e.Field + "': " + e.Message
}
