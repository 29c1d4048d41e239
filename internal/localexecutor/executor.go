// Package localexecutor runs a job's tasks in-process, one goroutine per
// ready task.
package localexecutor

import (
	"context"

	"github.com/vk/jobgraph/internal/executor"
	"github.com/vk/jobgraph/internal/job"
)

// invoker calls task bodies directly on the current process.
type invoker struct{}

func (invoker) Invoke(ctx context.Context, spec *job.Spec, args []any) (any, error) {
	return spec.Call(ctx, args)
}

// New creates a local parallel executor for plan.
func New(plan *job.Plan, opts ...executor.Option) *executor.Parallel {
	return executor.NewParallel(plan, invoker{}, opts...)
}

// Run validates j and executes it locally.
func Run(ctx context.Context, j *job.Job, opts ...executor.Option) (map[string]any, error) {
	plan, err := job.Validate(j)
	if err != nil {
		return nil, err
	}
	return New(plan, opts...).Execute(ctx)
}
