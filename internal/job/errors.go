package job

import (
	"errors"
	"fmt"
)

// Causes carried by a ValidationError.
var (
	ErrNoTasks        = errors.New("job declares no tasks")
	ErrEmptyTaskID    = errors.New("task id is empty")
	ErrDuplicateTask  = errors.New("duplicate task id")
	ErrAbstractTask   = errors.New("task has no body")
	ErrNotFunc        = errors.New("task body is not a function")
	ErrVariadic       = errors.New("task body is variadic")
	ErrVoidResult     = errors.New("task body produces no result")
	ErrBadResult      = errors.New("task body must return T or (T, error)")
	ErrParamCount     = errors.New("parameter binding count mismatch")
	ErrInvalidBinding = errors.New("parameter binding must be exactly one of context or link_from")
	ErrUnknownTask    = errors.New("link_from references an undeclared task")
	ErrMissingContext = errors.New("context value is missing")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrCyclicJob      = errors.New("task dependencies form a cycle")
	ErrDuplicateJob   = errors.New("job already registered")
	ErrJobNotFound    = errors.New("job not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskPanic      = errors.New("task body panicked")
	ErrArgumentCount  = errors.New("argument count mismatch")
	ErrArgumentType   = errors.New("argument type mismatch")
)

// ValidationError reports a structurally invalid job. Task is empty for
// job-wide failures.
type ValidationError struct {
	Job   string
	Task  string
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("invalid job %q: %v", e.Job, e.Cause)
	}
	return fmt.Sprintf("invalid job %q: task %q: %v", e.Job, e.Task, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// TaskError reports a task body that failed while the job was running.
type TaskError struct {
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
