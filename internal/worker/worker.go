// Package worker executes single task invocations on behalf of a coordinator.
//
// A Worker knows nothing about graphs or other workers. It resolves the task
// from its catalog, converts the arguments to the body's parameter types and
// calls it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/transport"
)

// ErrSignatureMismatch is returned when the coordinator and the worker
// disagree on a task's parameter types.
var ErrSignatureMismatch = errors.New("task signature mismatch")

// Option configures a Worker.
type Option func(*Worker)

// WithTaskDelay makes every execution sleep for d first. It is used to make
// load balancing observable.
func WithTaskDelay(d time.Duration) Option {
	return func(w *Worker) {
		w.delay = d
	}
}

// Worker runs tasks of catalogued jobs. It is safe for concurrent use.
type Worker struct {
	name    string
	catalog *job.Catalog
	delay   time.Duration
}

var _ transport.Handle = (*Worker)(nil)

// New creates a worker named name.
func New(name string, catalog *job.Catalog, opts ...Option) *Worker {
	w := &Worker{name: name, catalog: catalog}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the worker's name.
func (w *Worker) Name() string {
	return w.name
}

// ExecuteTask implements transport.Handle. Errors are failures of the task
// and never match transport.ErrConnection.
func (w *Worker) ExecuteTask(ctx context.Context, req transport.Request) (any, error) {
	logger := ctxlog.FromContext(ctx).With("worker", w.name, "job", req.JobName, "task", req.TaskID)

	spec, err := w.catalog.Spec(req.JobName, req.TaskID)
	if err != nil {
		return nil, err
	}
	if req.ParamTypes != nil && !slices.Equal(req.ParamTypes, spec.ParamTypeNames()) {
		return nil, fmt.Errorf("%w: coordinator sent %v, task takes %v", ErrSignatureMismatch, req.ParamTypes, spec.ParamTypeNames())
	}
	if len(req.Args) != len(spec.ParamTypes) {
		return nil, fmt.Errorf("%w: want %d, got %d", job.ErrArgumentCount, len(spec.ParamTypes), len(req.Args))
	}

	args := make([]any, len(req.Args))
	for i, a := range req.Args {
		v, err := transport.Coerce(a, spec.ParamTypes[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}

	if w.delay > 0 {
		t := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	logger.Debug("Executing task.")
	v, err := spec.Call(ctx, args)
	if err != nil {
		logger.Error("Task failed.", "error", err)
		return nil, err
	}
	return v, nil
}
