package http

import (
	"database/sql"
	"log/slog"

	"github.com/gabriel/manga-site-adapters/internal/config"
	"github.com/gabriel/manga-site-adapters/internal/connectors"
	connectordefaults "github.com/gabriel/manga-site-adapters/internal/connectors/defaults"
	"github.com/gabriel/manga-site-adapters/internal/http/handlers"
	"github.com/gabriel/manga-site-adapters/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func NewServer(cfg config.Config, db *sql.DB) *fiber.App {
	return NewServerWithRegistry(cfg, db, nil)
}

func NewServerWithRegistry(cfg config.Config, db *sql.DB, connectorRegistry *connectors.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	if connectorRegistry == nil {
		loadedRegistry, err := connectordefaults.NewRegistry(connectordefaults.Options{
			SitesPath:         cfg.SitesPath,
			Timeout:           cfg.HTTPTimeout,
			UserAgent:         cfg.UserAgent,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			slog.Warn("site configs loaded with warnings", "error", err)
		}
		if loadedRegistry == nil {
			loadedRegistry = connectors.NewRegistry()
		}
		connectorRegistry = loadedRegistry
	}

	health := handlers.NewHealthHandler(db)
	sources := handlers.NewSourcesHandler(connectorRegistry, repository.NewSourceRepository(db))

	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/sources", sources.List)
	v1.Get("/sources/health", sources.Health)
	v1.Put("/sources/:key/enabled", sources.SetEnabled)
	v1.Get("/sources/:key/filters", sources.Filters)
	v1.Get("/sources/:key/popular", sources.Popular)
	v1.Get("/sources/:key/latest", sources.Latest)
	v1.Get("/sources/:key/search", sources.Search)
	v1.Get("/sources/:key/manga", sources.Details)
	v1.Get("/sources/:key/chapters", sources.Chapters)
	v1.Get("/sources/:key/pages", sources.Pages)

	return app
}
