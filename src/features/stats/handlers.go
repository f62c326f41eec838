package stats

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the stats feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the stats feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStats returns the aggregate snapshot for the active collection.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	slog.Debug("GetStats handler called")
	return c.JSON(h.service.Snapshot())
}

// GetArtists returns the artist vocabulary for filter dropdowns.
func (h *Handler) GetArtists(c *fiber.Ctx) error {
	slog.Debug("GetArtists handler called")
	return c.JSON(h.service.Artists())
}

// GetGenres returns the genre vocabulary for filter dropdowns.
func (h *Handler) GetGenres(c *fiber.Ctx) error {
	slog.Debug("GetGenres handler called")
	return c.JSON(h.service.Genres())
}
