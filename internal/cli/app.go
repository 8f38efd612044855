package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/infrastructure/config"
	"github.com/eshaffer321/costshare/internal/infrastructure/logging"
	"github.com/eshaffer321/costshare/internal/infrastructure/metrics"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

// App wires configuration, storage and the billing service for one command
type App struct {
	Config   *config.Config
	Store    *storage.Storage
	Billing  *billing.Service
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// NewApp loads config, opens the database and builds the billing service.
// Logs go to logOut so command output on stdout stays clean.
func NewApp(flags GlobalFlags, system string, logOut io.Writer) (*App, error) {
	cfg := config.LoadOrEnvWithPath(flags.ConfigPath)

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithWriter(loggingCfg, logOut).With("system", system)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Storage.DatabasePath, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	logger.Debug("app initialized",
		"config", flags.ConfigPath,
		"database", cfg.Storage.DatabasePath,
		"projects", len(cfg.Projects),
		"services", len(cfg.Services),
	)

	return &App{
		Config:   cfg,
		Store:    store,
		Billing:  billing.NewService(cfg, store, recorder, logger),
		Registry: registry,
		Logger:   logger,
	}, nil
}

// Close releases the database
func (a *App) Close() error {
	return a.Store.Close()
}
