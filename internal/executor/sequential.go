package executor

import (
	"context"
	"errors"

	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
)

var errStalled = errors.New("no pending task is ready")

// Sequential runs tasks one after another on the calling goroutine.
type Sequential struct {
	plan *job.Plan
	opts options
}

// NewSequential creates a sequential executor for plan.
func NewSequential(plan *job.Plan, opts ...Option) *Sequential {
	return &Sequential{plan: plan, opts: newOptions(opts)}
}

// Execute scans pending tasks in declaration order, runs the first ready one
// and restarts the scan, until nothing is pending. The first task error
// aborts the job.
func (s *Sequential) Execute(ctx context.Context) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("job", s.plan.Job.Name, "executor", "sequential")
	pending := s.plan.Order()
	results := make(map[string]any, len(pending))
	has := func(id string) bool {
		_, ok := results[id]
		return ok
	}
	lookup := func(id string) (any, bool) {
		v, ok := results[id]
		return v, ok
	}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := -1
		for i, id := range pending {
			if s.plan.Ready(id, has) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, errStalled
		}

		id := pending[next]
		spec, _ := s.plan.Spec(id)
		args, err := spec.ResolveArgs(s.plan.Job.Context, lookup)
		if err != nil {
			return nil, &job.TaskError{TaskID: id, Err: err}
		}

		logger.Debug("Running task.", "task", id)
		v, err := spec.Call(ctx, args)
		if err != nil {
			logger.Error("Task failed.", "task", id, "error", err)
			return nil, &job.TaskError{TaskID: id, Err: err}
		}

		results[id] = v
		pending = append(pending[:next], pending[next+1:]...)
		s.notify(ctx, id)
	}
	return results, nil
}

func (s *Sequential) notify(ctx context.Context, id string) {
	if s.opts.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Warn("Task finished notifier panicked.", "task", id, "panic", r)
		}
	}()
	if err := s.opts.notifier.TaskFinished(ctx, id); err != nil {
		ctxlog.FromContext(ctx).Warn("Task finished notifier failed.", "task", id, "error", err)
	}
}
