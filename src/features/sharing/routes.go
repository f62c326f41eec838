package sharing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the sharing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/share", handler.Publish)
}
