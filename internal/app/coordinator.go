package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vk/jobgraph/internal/coordinator"
	"github.com/vk/jobgraph/internal/transport/socketio"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ServeCoordinator loads the job catalog and serves workers and submitters
// on ln until ctx is cancelled.
func (a *App) ServeCoordinator(ctx context.Context, ln net.Listener) error {
	ctx = a.context(ctx)

	policy, err := coordinator.ParsePolicy(a.config.Policy)
	if err != nil {
		return err
	}
	cat, err := a.LoadCatalog(ctx, a.config.JobsDir)
	if err != nil {
		return err
	}

	srv := socketio.NewServer(ctx)
	coord := coordinator.New(srv,
		coordinator.WithCatalog(cat),
		coordinator.WithPolicy(policy),
		coordinator.WithMaxCapacity(a.config.MaxCapacity),
	)
	srv.Attach(coord)

	httpServer := &http.Server{
		Handler:           a.coordinatorMux(srv, coord),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("📡 Coordinator listening.", "address", ln.Addr().String(), "policy", policy)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("coordinator server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down coordinator...")
		srv.Close()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("coordinator shutdown failed: %w", err)
		}
		a.logger.Debug("Coordinator shut down gracefully.")
		return nil
	})
	return g.Wait()
}
