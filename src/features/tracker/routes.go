package tracker

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the tracker feature.
func RegisterRoutes(app *fiber.App, service *Service, artwork ArtworkProvider) {
	handler := NewHandler(service, artwork)

	col := app.Group("/collection")
	col.Get("/", handler.GetCollection)
	col.Get("/export", handler.ExportCollection)
	col.Post("/import", handler.ImportCollection)
	col.Get("/random", handler.RandomRecord)
	col.Post("/reorder", handler.Reorder)
	col.Post("/records", handler.CreateRecord)
	col.Get("/records/:id", handler.GetRecord)
	col.Put("/records/:id", handler.UpdateRecord)
	col.Delete("/records/:id", handler.StageRemove)
	col.Post("/remove/commit", handler.CommitRemove)
	col.Post("/remove/cancel", handler.CancelRemove)
	col.Post("/records/:id/refresh", handler.RefreshRecord)
	col.Get("/records/:id/artwork", handler.GetArtwork)
}
