// Package app assembles the service from configuration: command file store,
// task persistence, executor, runtime and HTTP API.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/akozyrev/deskmate/internal/config"
	"github.com/akozyrev/deskmate/internal/executor"
	"github.com/akozyrev/deskmate/internal/httpapi"
	"github.com/akozyrev/deskmate/internal/observability"
	"github.com/akozyrev/deskmate/internal/taskruntime"
	"github.com/akozyrev/deskmate/internal/tasks"
)

type BuildResult struct {
	Config      config.Config
	API         *httpapi.Server
	Service     *taskruntime.Service
	ConfigStore *config.Store
	Metrics     *observability.Metrics

	// Cleanup releases external resources (DB handles) on shutdown.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	cfgStore, err := config.NewStore(cfg.CommandFile)
	if err != nil {
		return nil, fmt.Errorf("command file init failed: %w", err)
	}
	cfgStore.SetReloadHook(func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.ConfigReloads.WithLabelValues(outcome).Inc()
	})

	store, err := tasks.NewStore(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("task store init failed: %w", err)
	}

	service := taskruntime.New(cfgStore, executor.NewHost(""), store, metrics, taskruntime.Config{
		QueueCapacity:   cfg.QueueCapacity,
		JanitorInterval: cfg.JanitorInterval,
		TaskRetention:   cfg.TaskRetention,
	})

	api := httpapi.New(cfg, service, metrics)

	cleanup := func() error {
		var errs []string
		if err := service.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:      cfg,
		API:         api,
		Service:     service,
		ConfigStore: cfgStore,
		Metrics:     metrics,
		Cleanup:     cleanup,
	}, nil
}
