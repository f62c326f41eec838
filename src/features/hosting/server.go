package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lmoretti/waxshelf/src/features/config"
	"github.com/lmoretti/waxshelf/src/features/metrics"
	"github.com/lmoretti/waxshelf/src/features/preferences"
	"github.com/lmoretti/waxshelf/src/features/session"
	"github.com/lmoretti/waxshelf/src/features/sharing"
	"github.com/lmoretti/waxshelf/src/features/stats"
	"github.com/lmoretti/waxshelf/src/features/tracker"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// Services bundles everything the server exposes over HTTP.
type Services struct {
	Tracker     *tracker.Service
	Artwork     tracker.ArtworkProvider
	Session     *session.Service
	Stats       *stats.Service
	Sharing     *sharing.Service
	Preferences *preferences.Service
	Metrics     *metrics.Recorder
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, services Services) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
		AppName:               "Waxshelf",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             8 * 1024 * 1024, // collection imports are JSON, keep uploads small
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	tracker.RegisterRoutes(app, services.Tracker, services.Artwork)
	session.RegisterRoutes(app, services.Session)
	stats.RegisterRoutes(app, services.Stats)
	preferences.RegisterRoutes(app, services.Preferences)
	config.RegisterRoutes(app, cfg)
	metrics.RegisterRoutes(app, services.Metrics)
	if cfg.Get().Sharing.Enabled {
		sharing.RegisterRoutes(app, services.Sharing)
	}

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
