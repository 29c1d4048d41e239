package app

import (
	"context"
	"encoding/json"

	"github.com/vk/jobgraph/internal/coordinator"
	"github.com/vk/jobgraph/internal/transport/socketio"
)

// Submit asks the coordinator to run the job name and returns its results.
func (a *App) Submit(ctx context.Context, name, mode string) (map[string]json.RawMessage, error) {
	ctx = a.context(ctx)

	m, err := coordinator.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	client, err := socketio.Dial(ctx, a.config.CoordinatorURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	logger := a.logger.With("job", name, "mode", m)
	logger.Info("🚀 Submitting job.")
	results, err := client.Submit(ctx, name, m, func(task string) {
		logger.Info("Task finished.", "task", task)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("🏁 Job finished.", "tasks", len(results))
	return results, nil
}
