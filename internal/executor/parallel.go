package executor

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"
	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/scheduler"
)

// Parallel runs every ready task on its own goroutine.
type Parallel struct {
	plan    *job.Plan
	invoker Invoker
	opts    options
}

// NewParallel creates the engine for plan. inv decides where tasks run.
func NewParallel(plan *job.Plan, inv Invoker, opts ...Option) *Parallel {
	return &Parallel{plan: plan, invoker: inv, opts: newOptions(opts)}
}

// Execute dispatches ready tasks until none is pending or one has failed. It
// always waits for every started task before returning, then reports the
// first recorded error, if any.
func (p *Parallel) Execute(ctx context.Context) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("job", p.plan.Job.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	var trackerOpts []scheduler.Option
	if n := p.opts.notifier; n != nil {
		trackerOpts = append(trackerOpts, scheduler.WithResultHook(n.TaskFinished))
	}
	tracker := scheduler.New(p.plan, trackerOpts...)

	var wg conc.WaitGroup
	for {
		id, ok := tracker.Next(ctx)
		if !ok {
			break
		}
		spec, _ := p.plan.Spec(id)
		logger.Debug("Dispatching task.", "task", id)
		wg.Go(func() {
			p.run(ctx, tracker, spec)
		})
	}

	if r := wg.WaitAndRecover(); r != nil {
		return nil, r.AsError()
	}
	if err := tracker.Err(); err != nil {
		return nil, err
	}
	return tracker.Results(), nil
}

func (p *Parallel) run(ctx context.Context, tracker *scheduler.Tracker, spec *job.Spec) {
	id := spec.ID()
	logger := ctxlog.FromContext(ctx).With("task", id)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task invocation panicked.", "panic", r)
			tracker.RecordError(&job.TaskError{TaskID: id, Err: fmt.Errorf("%w: %v", job.ErrTaskPanic, r)})
		}
	}()

	args, err := spec.ResolveArgs(p.plan.Job.Context, tracker.Result)
	if err != nil {
		tracker.RecordError(&job.TaskError{TaskID: id, Err: err})
		return
	}

	v, err := p.invoker.Invoke(ctx, spec, args)
	if err != nil {
		logger.Error("Task failed.", "error", err)
		tracker.RecordError(&job.TaskError{TaskID: id, Err: err})
		return
	}
	logger.Debug("Task finished.")
	tracker.RecordResult(ctx, id, v)
}
