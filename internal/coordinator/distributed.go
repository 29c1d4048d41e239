package coordinator

import (
	"context"
	"fmt"

	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/executor"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/localexecutor"
	"github.com/vk/jobgraph/internal/transport"
)

// Mode tells how a submitted job is run.
type Mode string

const (
	// ModeDistributed dispatches every task to a worker.
	ModeDistributed Mode = "distributed"
	// ModeCentral runs every task on the coordinator host.
	ModeCentral Mode = "central"
)

// ParseMode validates a submission mode. An empty string means distributed.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDistributed, "":
		return ModeDistributed, nil
	case ModeCentral:
		return ModeCentral, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// remoteInvoker sends each task to a free worker of the coordinator.
type remoteInvoker struct {
	c       *Coordinator
	jobName string
}

func (r remoteInvoker) Invoke(ctx context.Context, spec *job.Spec, args []any) (any, error) {
	req := transport.Request{
		JobName:    r.jobName,
		TaskID:     spec.ID(),
		Args:       args,
		ParamTypes: spec.ParamTypeNames(),
	}
	v, err := r.c.ExecuteOnFreeWorker(ctx, req)
	if err != nil {
		return nil, err
	}
	return transport.Coerce(v, spec.ResultType)
}

// NewDistributedExecutor creates the parallel engine for plan that runs every
// task through c. Workers must know the job under plan.Job.Name.
func NewDistributedExecutor(plan *job.Plan, c *Coordinator, opts ...executor.Option) *executor.Parallel {
	return executor.NewParallel(plan, remoteInvoker{c: c, jobName: plan.Job.Name}, opts...)
}

// ExecuteJob validates j and runs it on the workers.
func (c *Coordinator) ExecuteJob(ctx context.Context, j *job.Job, opts ...executor.Option) (map[string]any, error) {
	plan, err := job.Validate(j)
	if err != nil {
		return nil, err
	}
	return c.ExecutePlan(ctx, plan, opts...)
}

// ExecutePlan runs an already validated plan on the workers.
func (c *Coordinator) ExecutePlan(ctx context.Context, plan *job.Plan, opts ...executor.Option) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("job", plan.Job.Name, "mode", ModeDistributed)
	logger.Info("Job started.", "tasks", plan.Len())

	results, err := NewDistributedExecutor(plan, c, opts...).Execute(ctx)
	if err != nil {
		logger.Error("Job failed.", "error", err)
		return nil, err
	}
	logger.Info("Job finished.")
	return results, nil
}

// RunCentral runs plan on the coordinator host with the local parallel
// executor, reporting each finished task to n.
func (c *Coordinator) RunCentral(ctx context.Context, plan *job.Plan, n executor.Notifier) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("job", plan.Job.Name, "mode", ModeCentral)
	logger.Info("Job started.", "tasks", plan.Len())

	var opts []executor.Option
	if n != nil {
		opts = append(opts, executor.WithNotifier(n))
	}
	results, err := localexecutor.New(plan, opts...).Execute(ctx)
	if err != nil {
		logger.Error("Job failed.", "error", err)
		return nil, err
	}
	logger.Info("Job finished.")
	return results, nil
}

// Submit runs the catalogued job name in the given mode.
func (c *Coordinator) Submit(ctx context.Context, name string, mode Mode, n executor.Notifier) (map[string]any, error) {
	plan, err := c.catalog.Plan(name)
	if err != nil {
		return nil, err
	}
	if mode == ModeCentral {
		return c.RunCentral(ctx, plan, n)
	}
	var opts []executor.Option
	if n != nil {
		opts = append(opts, executor.WithNotifier(n))
	}
	return c.ExecutePlan(ctx, plan, opts...)
}
