package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/fetch"
	"github.com/gabriel/manga-site-adapters/internal/models"
	"github.com/gabriel/manga-site-adapters/internal/repository"
	"github.com/gofiber/fiber/v2"
)

const (
	filterQueryPrefix = "filter."
	healthTimeout     = 10 * time.Second
)

type SourcesHandler struct {
	registry *connectors.Registry
	repo     *repository.SourceRepository
}

type sourceItem struct {
	connectors.Descriptor
	Enabled       bool       `json:"enabled"`
	Healthy       *bool      `json:"healthy,omitempty"`
	LastError     *string    `json:"lastError,omitempty"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func NewSourcesHandler(registry *connectors.Registry, repo *repository.SourceRepository) *SourcesHandler {
	return &SourcesHandler{registry: registry, repo: repo}
}

// List returns every registered source. Sources missing from the database
// have not been synced yet and are reported as enabled.
func (h *SourcesHandler) List(c *fiber.Ctx) error {
	stored, err := h.repo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list sources"})
	}
	byKey := make(map[string]models.Source, len(stored))
	for _, source := range stored {
		byKey[source.Key] = source
	}

	descriptors := h.registry.List()
	items := make([]sourceItem, 0, len(descriptors))
	for _, descriptor := range descriptors {
		item := sourceItem{Descriptor: descriptor, Enabled: true}
		if source, ok := byKey[descriptor.Key]; ok {
			item.Enabled = source.Enabled
			item.Healthy = source.Healthy
			item.LastError = source.LastError
			item.LastCheckedAt = source.LastCheckedAt
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{"items": items})
}

func (h *SourcesHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()
	return c.JSON(fiber.Map{"items": h.registry.Health(ctx)})
}

func (h *SourcesHandler) SetEnabled(c *fiber.Ctx) error {
	connector, ok := h.registry.Get(c.Params("key"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "source not found"})
	}

	var req setEnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}
	if req.Enabled == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "enabled is required"})
	}

	found, err := h.repo.SetEnabled(connector.Key(), *req.Enabled)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to update source"})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "source has not been synced"})
	}

	return c.JSON(fiber.Map{"key": connector.Key(), "enabled": *req.Enabled})
}

func (h *SourcesHandler) Filters(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	return c.JSON(fiber.Map{"items": connector.Filters()})
}

func (h *SourcesHandler) Popular(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	page, err := connector.Popular(c.Context(), c.QueryInt("page", 1))
	if err != nil {
		return writeSourceError(c, connector, err)
	}
	return c.JSON(page)
}

func (h *SourcesHandler) Latest(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	page, err := connector.Latest(c.Context(), c.QueryInt("page", 1))
	if err != nil {
		return writeSourceError(c, connector, err)
	}
	return c.JSON(page)
}

func (h *SourcesHandler) Search(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	page, err := connector.Search(c.Context(), c.QueryInt("page", 1), c.Query("q"), filterSelections(c))
	if err != nil {
		return writeSourceError(c, connector, err)
	}
	return c.JSON(page)
}

func (h *SourcesHandler) Details(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	details, err := connector.Details(c.Context(), mangaFromQuery(c))
	if err != nil {
		return writeSourceError(c, connector, err)
	}
	return c.JSON(details)
}

func (h *SourcesHandler) Chapters(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	chapters, err := connector.Chapters(c.Context(), mangaFromQuery(c))
	if err != nil {
		return writeSourceError(c, connector, err)
	}
	return c.JSON(fiber.Map{"items": chapters})
}

func (h *SourcesHandler) Pages(c *fiber.Ctx) error {
	connector, err := h.resolve(c)
	if connector == nil {
		return err
	}
	pages, err := connector.Pages(c.Context(), models.Chapter{URL: c.Query("url")})
	if err != nil {
		return writeSourceError(c, connector, err)
	}
	return c.JSON(fiber.Map{"items": pages})
}

// resolve returns a nil connector once it has written an error response;
// the returned error is then only the result of that write.
func (h *SourcesHandler) resolve(c *fiber.Ctx) (connectors.Connector, error) {
	connector, ok := h.registry.Get(c.Params("key"))
	if !ok {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "source not found"})
	}

	source, err := h.repo.GetByKey(connector.Key())
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load source"})
	}
	if source != nil && !source.Enabled {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "source is disabled"})
	}
	return connector, nil
}

func writeSourceError(c *fiber.Ctx, connector connectors.Connector, err error) error {
	body := fiber.Map{"message": err.Error(), "source": connector.Key()}

	var statusErr *fetch.StatusError
	status := fiber.StatusBadGateway
	switch {
	case errors.Is(err, connectors.ErrInvalidRequest), errors.Is(err, connectors.ErrUnsupported):
		status = fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	case errors.As(err, &statusErr):
		body["upstreamStatus"] = statusErr.StatusCode
	}

	if status >= fiber.StatusInternalServerError {
		slog.Warn("source request failed", "source", connector.Key(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(body)
}

func filterSelections(c *fiber.Ctx) []models.FilterSelection {
	selections := make([]models.FilterSelection, 0)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		param, ok := strings.CutPrefix(string(key), filterQueryPrefix)
		if !ok || param == "" {
			return
		}
		selections = append(selections, models.FilterSelection{Param: param, Value: string(value)})
	})
	return selections
}

func mangaFromQuery(c *fiber.Ctx) models.MangaSummary {
	return models.MangaSummary{
		URL:          c.Query("url"),
		Title:        c.Query("title"),
		ThumbnailURL: c.Query("thumbnail"),
	}
}
