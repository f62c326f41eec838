package preferences

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the preferences feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	prefs := app.Group("/preferences")
	prefs.Get("/", handler.GetPreferences)
	prefs.Put("/:key", handler.SetPreference)
}
