// Package transport defines how the coordinator reaches workers.
//
// The coordinator only needs a Handle per worker, obtained by name from a
// Directory. Errors returned by a Handle fall in two classes: those matching
// ErrConnection mean the worker is gone, everything else is a failure of the
// task itself.
package transport

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -destination=transportmock/transport.go -package=transportmock . Handle,Directory

// ErrConnection marks the loss of a worker.
var ErrConnection = errors.New("worker connection lost")

// ErrUnknownWorker is returned by a Directory for a name it does not know.
var ErrUnknownWorker = errors.New("unknown worker")

// Request asks a worker to run one task of a catalogued job.
type Request struct {
	JobName    string   `json:"job"`
	TaskID     string   `json:"task"`
	Args       []any    `json:"args"`
	ParamTypes []string `json:"param_types"`
}

// Handle issues task requests to one worker.
type Handle interface {
	ExecuteTask(ctx context.Context, req Request) (any, error)
}

// Directory resolves a worker name to its Handle.
type Directory interface {
	Lookup(name string) (Handle, error)
}

// ConnectionError reports that a worker could not be reached. It matches
// ErrConnection with errors.Is.
type ConnectionError struct {
	Worker string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("worker %q: %v", e.Worker, ErrConnection)
	}
	return fmt.Sprintf("worker %q: %v: %v", e.Worker, ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// RemoteError carries the failure of a task body executed by a worker.
// Err is only set when the worker runs in the same process; over the wire
// the message is all that survives.
type RemoteError struct {
	Worker  string
	Task    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("task %q failed on worker %q: %s", e.Task, e.Worker, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
