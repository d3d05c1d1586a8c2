package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerlens/backend/internal/api"
	"github.com/ledgerlens/backend/internal/application/service"
	"github.com/ledgerlens/backend/internal/domain/recon"
	"github.com/ledgerlens/backend/internal/infrastructure/config"
	"github.com/ledgerlens/backend/internal/infrastructure/logging"
	"github.com/ledgerlens/backend/internal/infrastructure/semantic"
	"github.com/ledgerlens/backend/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg := config.LoadOrEnvWithPath(*configPath)
	logger := logging.NewScopedLogger(cfg.Observability.Logging, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "path", cfg.Storage.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// No API key: scoring stays rule-based.
	var scorer recon.SemanticScorer
	if cfg.OpenAI.APIKey != "" {
		scorer = semantic.NewOpenAIScorer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		logger.Info("semantic scoring enabled", "model", cfg.OpenAI.Model)
	}

	recons := service.NewReconcileService(cfg.EngineConfig(), scorer, store, logger)
	uploads := service.NewUploadService(store, logger)

	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, recons, uploads, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
