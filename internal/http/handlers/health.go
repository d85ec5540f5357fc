package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports on the service itself. Upstream sites are covered by
// /v1/sources/health.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.db.PingContext(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     "down",
			"time":   now,
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"db":     "up",
		"time":   now,
	})
}
