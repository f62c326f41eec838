package config

var defaultConfig = Config{
	Profile: Profile{
		Name: "default",
	},
	Server: Server{
		PrintRoutes: false,
		Port:        3636,
	},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Database: Database{
		Path: "./waxshelf.db",
	},
	Catalog: Catalog{
		Providers: map[string]Provider{
			"spotify": {
				Enabled:  true,
				ClientID: "", // From https://developer.spotify.com/dashboard
				Secret:   nil,
			},
			"itunes": {
				Enabled: true,
			},
		},
	},
	Cloud: Cloud{
		Enabled:     false,
		DatabaseURL: "", // e.g. https://<project>-default-rtdb.europe-west1.firebasedatabase.app
		ProjectID:   "",
		APIKey:      "",
	},
	Sharing: Sharing{
		Enabled: true,
		BaseURL: "http://localhost:3636",
	},
	Artwork: Artwork{
		CacheDir: "./artwork-cache",
		Size:     600,
		Quality:  85,
	},
	Telegram: Telegram{
		Enabled:      false,
		Token:        "",                                   // Can be obtained with https://t.me/BotFather
		AllowedUsers: []string{"<your_telegram_username>"}, // No @
		ChatID:       0,
	},
}
