package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/jobgraph/internal/executor"
	"github.com/vk/jobgraph/internal/localexecutor"
)

// Local execution modes.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// ErrInvalidMode is returned for an unknown local execution mode.
var ErrInvalidMode = errors.New("invalid mode: must be 'sequential' or 'parallel'")

// Run executes every job found under paths in the current process and
// returns the result maps keyed by job name.
func (a *App) Run(ctx context.Context, mode string, paths ...string) (map[string]map[string]any, error) {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.", "mode", mode)

	if mode != ModeSequential && mode != ModeParallel {
		return nil, ErrInvalidMode
	}

	cat, err := a.LoadCatalog(ctx, paths...)
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		a.logger.Warn("No jobs found, execution not required.")
		return map[string]map[string]any{}, nil
	}

	all := make(map[string]map[string]any, cat.Len())
	for _, name := range cat.Names() {
		plan, err := cat.Plan(name)
		if err != nil {
			return nil, err
		}

		var exec executor.Executor
		if mode == ModeSequential {
			exec = executor.NewSequential(plan)
		} else {
			exec = localexecutor.New(plan)
		}

		a.logger.Info("🚀 Starting job.", "job", name, "tasks", plan.Len())
		results, err := exec.Execute(ctx)
		if err != nil {
			return nil, fmt.Errorf("job %q failed: %w", name, err)
		}
		a.logger.Info("🏁 Job finished.", "job", name)
		all[name] = results
	}

	a.logger.Debug("App.Run method finished.")
	return all, nil
}

