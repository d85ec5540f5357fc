package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/config"
	connectordefaults "github.com/gabriel/manga-site-adapters/internal/connectors/defaults"
	"github.com/gabriel/manga-site-adapters/internal/database"
	apihttp "github.com/gabriel/manga-site-adapters/internal/http"
	"github.com/gabriel/manga-site-adapters/internal/notifications"
	"github.com/gabriel/manga-site-adapters/internal/repository"
	"github.com/gabriel/manga-site-adapters/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open sqlite", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.ApplyMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	connectorRegistry, registryErr := connectordefaults.NewRegistry(connectordefaults.Options{
		SitesPath:         cfg.SitesPath,
		Timeout:           cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if connectorRegistry == nil {
		slog.Error("failed to build source registry", "error", registryErr)
		os.Exit(1)
	}
	if registryErr != nil {
		slog.Warn("source registry loaded with warnings", "error", registryErr)
	}

	sourceRepo := repository.NewSourceRepository(db)
	if err := sourceRepo.Sync(connectorRegistry.List()); err != nil {
		slog.Error("failed to sync sources", "error", err)
		os.Exit(1)
	}

	app := apihttp.NewServerWithRegistry(cfg, db, connectorRegistry)

	notifier := notifications.Notifier(notifications.NewLogNotifier(logger))
	if cfg.NotifyWebhookURL != "" {
		webhook, err := notifications.NewWebhookNotifier(cfg.NotifyWebhookURL)
		if err != nil {
			slog.Warn("webhook notifications disabled", "error", err)
		} else {
			notifier = notifications.NewMultiNotifier(notifier, webhook)
		}
	}

	proberCtx, proberCancel := context.WithCancel(context.Background())
	prober := scheduler.NewProber(
		sourceRepo,
		connectorRegistry,
		notifier,
		scheduler.ProberConfig{
			Interval:     time.Duration(cfg.HealthPollMinutes) * time.Minute,
			CheckTimeout: cfg.HTTPTimeout,
		},
		slog.Default(),
	)
	if cfg.HealthPollEnabled {
		prober.Start(proberCtx)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment, "sources", len(connectorRegistry.All()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	proberCancel()
	prober.StopWait(2 * time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
