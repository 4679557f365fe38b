// Package app wires the pieces of a pipeline run together: configuration
// loading, kind registration, dependency resolution and scheduling.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/taskpipe/internal/config"
	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/inputs"
	"github.com/vk/taskpipe/internal/registry"
)

// App encapsulates one application instance: its logger, registry, loaded
// pipeline model and external inputs.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	registry *registry.Registry
	model    *config.Model
	external map[string]any
}

// NewApp constructs a fully initialized App: it builds the logger, loads the
// pipeline model through the given loader, loads the external inputs, and
// registers the task-kind modules (the built-in set when none are given).
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured.")

	model, err := loader.Load(ctx, cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	logger.Debug("Pipeline configuration loaded.", "pipeline", model.Pipeline.Name)

	external, err := inputs.Load(cfg.InputsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load external inputs: %w", err)
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Task kinds registered.", "kinds", reg.Kinds())

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		registry: reg,
		model:    model,
		external: external,
	}, nil
}

// Registry exposes the app's registry, primarily for tests.
func (a *App) Registry() *registry.Registry { return a.registry }

// Model exposes the loaded pipeline model, primarily for tests.
func (a *App) Model() *config.Model { return a.model }
