package preferences

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the preferences feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the preferences feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetPreferences returns every preference with its effective value.
func (h *Handler) GetPreferences(c *fiber.Ctx) error {
	slog.Debug("GetPreferences handler called")
	prefs, err := h.service.All(c.Context())
	if err != nil {
		slog.Error("Error loading preferences", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error loading preferences"})
	}
	return c.JSON(prefs)
}

// SetPreference stores a single preference value.
func (h *Handler) SetPreference(c *fiber.Ctx) error {
	slog.Debug("SetPreference handler called", "key", c.Params("key"))

	var body struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Set(c.Context(), c.Params("key"), body.Value); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
