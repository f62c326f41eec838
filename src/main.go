package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/features/config"
	"github.com/lmoretti/waxshelf/src/features/hosting"
	"github.com/lmoretti/waxshelf/src/features/logging"
	"github.com/lmoretti/waxshelf/src/features/metrics"
	"github.com/lmoretti/waxshelf/src/features/preferences"
	"github.com/lmoretti/waxshelf/src/features/session"
	"github.com/lmoretti/waxshelf/src/features/sharing"
	"github.com/lmoretti/waxshelf/src/features/stats"
	"github.com/lmoretti/waxshelf/src/features/tracker"
	"github.com/lmoretti/waxshelf/src/infra/artwork"
	"github.com/lmoretti/waxshelf/src/infra/catalog"
	"github.com/lmoretti/waxshelf/src/infra/cloudstore"
	"github.com/lmoretti/waxshelf/src/infra/database"
	"github.com/lmoretti/waxshelf/src/infra/identity"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Reload config on file changes
	watcher, err := config.NewWatcher(cfgManager, "config.yaml")
	if err != nil {
		slog.Warn("Config watcher disabled", "error", err)
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	recorder := metrics.NewRecorder()

	// Local collections live in the embedded database
	db, err := database.NewSqliteStore(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// User collections and shares live in the cloud document store
	identityService := identity.NewService(cfgManager.Get().Cloud.ProjectID)
	cloudStore := cloudstore.NewFirebaseStore(cfgManager.Get().Cloud.DatabaseURL, identityService)

	store := &collection.StoreMux{Local: db, Cloud: cloudStore}

	// Catalog lookup providers
	providerCfg := cfgManager.Get().Catalog.Providers
	spotifyCfg := providerCfg["spotify"]
	spotifySecret := ""
	if spotifyCfg.Secret != nil {
		spotifySecret = *spotifyCfg.Secret
	}
	spotifyProvider := catalog.NewSpotifyProvider(spotifyCfg.Enabled, spotifyCfg.ClientID, spotifySecret)
	itunesProvider := catalog.NewITunesProvider(providerCfg["itunes"].Enabled)

	profile := cfgManager.Get().Profile.Name
	trackerService := tracker.NewService(store, recorder, spotifyProvider, itunesProvider)
	if err := trackerService.SetSubject(context.Background(), collection.LocalSubject(profile)); err != nil {
		slog.Warn("Initial collection load failed", "error", err)
	}

	sessionService := session.NewService(identityService, trackerService, profile)
	statsService := stats.NewService(trackerService)
	sharingService := sharing.NewService(cfgManager, cloudStore, trackerService)
	preferencesService := preferences.NewService(db)
	artworkService := artwork.NewService(cfgManager)

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		var err error
		telegramBot, err = hosting.NewTelegramBot(cfgManager, trackerService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
			trackerService.SetNotifier(telegramBot)
			sharingService.SetNotifier(telegramBot)
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, hosting.Services{
		Tracker:     trackerService,
		Artwork:     artworkService,
		Session:     sessionService,
		Stats:       statsService,
		Sharing:     sharingService,
		Preferences: preferencesService,
		Metrics:     recorder,
	})
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
