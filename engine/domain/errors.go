package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the orchestrator's failure taxonomy.
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrUnsupportedSource  = errors.New("unsupported source")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendTaskFailed  = errors.New("backend task failed")
	ErrPollTimeout        = errors.New("poll timeout")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDuplicateTaskID    = errors.New("duplicate task id")
	ErrTaskNotReady       = errors.New("task not ready")
)

// ParamError wraps a sentinel with the offending caller input.
type ParamError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ParamError) Unwrap() error { return e.Wrapped }

// NewParamError creates a ParamError.
func NewParamError(field, value string, wrapped error) *ParamError {
	return &ParamError{Field: field, Value: value, Wrapped: wrapped}
}

// TaskError attaches the failing operation and task to a sentinel. Cause holds
// the underlying transport or decode error, if any.
type TaskError struct {
	Op     string
	TaskID string
	Err    error
	Cause  error
}

func (e *TaskError) Error() string {
	msg := e.Op
	if e.TaskID != "" {
		msg += " " + e.TaskID
	}
	switch {
	case e.Cause == nil:
		msg += ": " + e.Err.Error()
	case errors.Is(e.Cause, e.Err):
		msg += ": " + e.Cause.Error()
	default:
		msg += ": " + e.Err.Error() + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *TaskError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NewTaskError creates a TaskError.
func NewTaskError(op, taskID string, sentinel, cause error) *TaskError {
	return &TaskError{Op: op, TaskID: taskID, Err: sentinel, Cause: cause}
}
