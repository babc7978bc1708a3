package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/engine"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/providers/fixture"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

func main() {
	cfg := config.LoadOrDefault()

	// Parse flags
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Sources.FixturePath, "fixture", cfg.Sources.FixturePath, "Catalog fixture file")
	flag.StringVar(&cfg.Storage.Backend, "storage", cfg.Storage.Backend, "Storage backend (memory, badger, sqlite)")
	flag.StringVar(&cfg.Storage.Path, "data", cfg.Storage.Path, "Storage directory")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "catalogd: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger, err := logging.New(logging.ForLevel(cfg.Logging.Level, cfg.Logging.Development))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Initializing catalogd",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("fixture", cfg.Sources.FixturePath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()

	store, err := storage.Open(storage.Config{
		Backend: storage.Backend(cfg.Storage.Backend),
		Path:    cfg.Storage.Path,
	}, logger.Component("storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	src, err := fixture.Open(cfg.Sources.FixturePath, logger.Logger)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	if err := src.Start(ctx); err != nil {
		// Still serve the initial document without live reloads.
		logger.Warn("Fixture watch unavailable", zap.Error(err))
	}
	defer src.Close()

	hub := ws.NewHub(logger.Logger).WithMetrics(metrics)
	eng, err := engine.New(ctx, engine.Deps{
		Store: store,
		Sources: engine.Sources{
			Applications:  src.Applications(),
			Shortcuts:     src.Shortcuts(),
			Contacts:      src.Contacts(),
			Notifications: src.Notifications(),
		},
		Sink:    hub,
		Logger:  logger.Logger,
		Metrics: metrics,
	}, engine.FromAppConfig(cfg))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer eng.Close()

	srv := server.New(cfg, eng, hub, metrics, logger.Logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
		return nil
	case err := <-errChan:
		return err
	}
}
