// Package executor defines the job execution engines.
//
// Sequential runs one task at a time in dependency order. Parallel is the
// engine shared by the local and the distributed executors: it hands every
// ready task to its own goroutine and delegates the actual invocation to an
// Invoker.
package executor

import (
	"context"

	"github.com/vk/jobgraph/internal/job"
)

// Executor runs a validated job to completion and returns its results.
type Executor interface {
	Execute(ctx context.Context) (map[string]any, error)
}

// Invoker executes one task with resolved arguments.
type Invoker interface {
	Invoke(ctx context.Context, spec *job.Spec, args []any) (any, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, spec *job.Spec, args []any) (any, error)

func (f InvokerFunc) Invoke(ctx context.Context, spec *job.Spec, args []any) (any, error) {
	return f(ctx, spec, args)
}

// Notifier observes task completion. Its errors never affect the run.
type Notifier interface {
	TaskFinished(ctx context.Context, taskID string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, taskID string) error

func (f NotifierFunc) TaskFinished(ctx context.Context, taskID string) error {
	return f(ctx, taskID)
}

type options struct {
	notifier Notifier
}

// Option configures an executor.
type Option func(*options)

// WithNotifier registers a progress observer called once per finished task.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
