package stats

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the stats feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/stats", handler.GetStats)
	app.Get("/suggestions/artists", handler.GetArtists)
	app.Get("/suggestions/genres", handler.GetGenres)
}
