package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JoseCortezz25/craft-canvas/internal/config"
	"github.com/JoseCortezz25/craft-canvas/internal/logger"
	"github.com/JoseCortezz25/craft-canvas/internal/observability"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

// app is the configuration and logger shared by the commands.
type app struct {
	cfg *config.Config
	log *logger.Logger
}

func loadApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Resolve(opts.ConfigDir, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	mode := cfg.LogMode
	if opts.Verbose {
		mode = "dev"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) tracing(ctx context.Context) (observability.ShutdownFunc, error) {
	return observability.InitOTel(ctx, a.log, observability.Config{
		ServiceName: "craftcanvas",
		Version:     version,
		Exporter:    a.cfg.Tracing.Exporter,
		Endpoint:    a.cfg.Tracing.Endpoint,
		SampleRatio: a.cfg.Tracing.SampleRatio,
		Writer:      os.Stderr,
	})
}

func (a *app) pipeline(ctx context.Context) (*orchestrator.Pipeline, error) {
	return orchestrator.New(ctx, orchestrator.Settings{
		Model:      a.cfg.ModelConfig(),
		Wiring:     a.cfg.AgentWiring(),
		RunTimeout: a.cfg.RunTimeout,
		Logger:     a.log,
	})
}

func (a *app) close(ctx context.Context, shutdown observability.ShutdownFunc) {
	if shutdown != nil {
		if err := shutdown(ctx); err != nil {
			a.log.Warn("tracer shutdown failed", "error", err)
		}
	}
	a.log.Sync()
}
