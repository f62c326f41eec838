package session

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the session feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	sess := app.Group("/session")
	sess.Get("/", handler.GetSession)
	sess.Post("/user", handler.SignIn)
	sess.Post("/signout", handler.SignOut)
	sess.Post("/local", handler.UseLocal)
	sess.Post("/share/:id", handler.ViewShare)
}
