package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/executor"
	"github.com/specialistvlad/modfactory/internal/goplugin"
	"github.com/specialistvlad/modfactory/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	factory  *factory.Factory
	executor *executor.Executor
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW. Each App owns its logger, registry and factory.
// Compiled-in modules are used when none are given.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Debug("Manifests loaded and translated into unified model.", "entries", len(model.Entries))

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "names", reg.Names())

	if cfg.Strict {
		if err := reg.ValidateEntries(ctx, model.Entries); err != nil {
			return nil, err
		}
		logger.Debug("Registry validation passed.")
	}

	// Registered modules win; anything else is tried as a Go plugin.
	importer := factory.Importers{reg, goplugin.New()}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		factory:  factory.New(importer, factory.WithLogger(logger)),
		executor: executor.New(cfg.Workers),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded manifest model.
func (a *App) Model() *config.Model {
	return a.model
}
