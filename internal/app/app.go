package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/jobgraph/internal/config"
	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/hcl"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *config.Config
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// When no modules are given the core modules are registered.
func NewApp(outW io.Writer, cfg *config.Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "functions", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		// This is a programmer error (a function no job file can bind), so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Config returns the configuration the application was built with.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// context attaches the application logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// LoadCatalog reads every job file under paths and validates the jobs into
// a catalog.
func (a *App) LoadCatalog(ctx context.Context, paths ...string) (*job.Catalog, error) {
	ctx = a.context(ctx)
	jobs, err := hcl.NewLoader(a.registry).Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load job files: %w", err)
	}

	cat := job.NewCatalog()
	for _, j := range jobs {
		if _, err := cat.Add(j); err != nil {
			return nil, err
		}
	}
	a.logger.Info("Jobs loaded.", "count", cat.Len(), "jobs", cat.Names())
	return cat, nil
}
