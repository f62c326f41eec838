package session

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lmoretti/waxshelf/src/collection"
)

// Handler is the handler for the session feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the session feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSession describes the active subject and signed-in user, if any.
func (h *Handler) GetSession(c *fiber.Ctx) error {
	slog.Debug("GetSession handler called")
	subject, ident := h.service.Current()
	resp := fiber.Map{
		"subject":  subject.Key(),
		"readOnly": subject.ReadOnly(),
	}
	if ident != nil {
		resp["user"] = fiber.Map{
			"id":          ident.UserID,
			"email":       ident.Email,
			"displayName": ident.DisplayName,
		}
	}
	return c.JSON(resp)
}

// SignIn verifies a Firebase ID token and activates the user's cloud
// collection.
func (h *Handler) SignIn(c *fiber.Ctx) error {
	slog.Debug("SignIn handler called")

	var body struct {
		IDToken string `json:"idToken"`
	}
	if err := c.BodyParser(&body); err != nil || body.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "idToken is required",
		})
	}
	ident, err := h.service.SignIn(c.Context(), body.IDToken)
	if err != nil {
		if ident != nil {
			// Signed in, but the cloud collection could not be loaded.
			slog.Warn("Signed in with degraded collection load", "user", ident.UserID, "error", err)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"user":        fiber.Map{"id": ident.UserID, "email": ident.Email},
				"loadWarning": err.Error(),
			})
		}
		if errors.Is(err, collection.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Sign-in failed", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign-in failed"})
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{"id": ident.UserID, "email": ident.Email, "displayName": ident.DisplayName},
	})
}

// SignOut drops the session and falls back to the local collection.
func (h *Handler) SignOut(c *fiber.Ctx) error {
	slog.Debug("SignOut handler called")
	if err := h.service.SignOut(c.Context()); err != nil {
		slog.Warn("Local collection load failed after sign-out", "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UseLocal activates the device-local collection.
func (h *Handler) UseLocal(c *fiber.Ctx) error {
	slog.Debug("UseLocal handler called")
	if err := h.service.UseLocal(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ViewShare activates a read-only shared collection snapshot.
func (h *Handler) ViewShare(c *fiber.Ctx) error {
	slog.Debug("ViewShare handler called", "share", c.Params("id"))
	if err := h.service.ViewShare(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "share not found"})
		}
		// The subject switched anyway; the share may simply be empty or
		// temporarily unreachable.
		slog.Warn("Share load failed", "share", c.Params("id"), "error", err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"loadWarning": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
