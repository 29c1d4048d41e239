package app

import (
	"context"
	"errors"

	"github.com/vk/jobgraph/internal/transport/socketio"
	"github.com/vk/jobgraph/internal/worker"
	"golang.org/x/sync/errgroup"
)

// ServeWorker connects to the coordinator and executes the tasks it is sent
// until ctx is cancelled or the coordinator goes away. registered, when not
// nil, receives the name assigned by the coordinator.
func (a *App) ServeWorker(ctx context.Context, registered func(name string, capacity int)) error {
	ctx = a.context(ctx)

	cat, err := a.LoadCatalog(ctx, a.config.JobsDir)
	if err != nil {
		return err
	}
	client, err := socketio.Dial(ctx, a.config.CoordinatorURL)
	if err != nil {
		return err
	}

	var opts []worker.Option
	if a.config.TaskDelay > 0 {
		opts = append(opts, worker.WithTaskDelay(a.config.TaskDelay))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ServeWorker(gctx, cat, a.config.WorkerCapacity, registered, opts...)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-client.Done():
		}
		client.Close()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, socketio.ErrDisconnected) && ctx.Err() != nil {
		return nil
	}
	return err
}
