package sharing

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lmoretti/waxshelf/src/collection"
)

// Handler is the handler for the sharing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the sharing feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Publish freezes and uploads the active collection as a share snapshot.
func (h *Handler) Publish(c *fiber.Ctx) error {
	slog.Debug("Publish share handler called")

	var body struct {
		SharedBy string `json:"sharedBy"`
	}
	// The body is optional; an anonymous share is fine.
	_ = c.BodyParser(&body)

	share, err := h.service.Publish(c.Context(), body.SharedBy)
	if err != nil {
		if errors.Is(err, collection.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(share)
}
