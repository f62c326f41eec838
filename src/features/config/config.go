package config

// Config holds the application configuration.
type Config struct {
	Profile  Profile  `yaml:"profile"`
	Server   Server   `yaml:"server"`
	Logger   Logger   `yaml:"logger"`
	Database Database `yaml:"database" validate:"required"`
	Catalog  Catalog  `yaml:"catalog"`
	Cloud    Cloud    `yaml:"cloud"`
	Sharing  Sharing  `yaml:"sharing"`
	Artwork  Artwork  `yaml:"artwork"`
	Telegram Telegram `yaml:"telegram"`
}

// Profile names the default local collection profile used before any sign-in.
type Profile struct {
	Name string `yaml:"name" validate:"required"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Database holds the configuration for the embedded database.
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Catalog holds the configuration for metadata lookup providers.
type Catalog struct {
	Providers map[string]Provider `yaml:"providers"`
}

// Provider holds configuration for an individual lookup provider.
type Provider struct {
	Enabled  bool    `yaml:"enabled"`
	ClientID string  `yaml:"client_id,omitempty"`
	Secret   *string `yaml:"secret,omitempty"`
}

// Cloud holds the configuration for the remote document store and the
// authentication provider in front of it.
type Cloud struct {
	Enabled     bool   `yaml:"enabled"`
	DatabaseURL string `yaml:"database_url"`
	ProjectID   string `yaml:"project_id"`
	APIKey      string `yaml:"api_key"`
}

// Sharing holds the configuration for published read-only snapshots.
type Sharing struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// Artwork holds the configuration for the cover thumbnail cache.
type Artwork struct {
	CacheDir string `yaml:"cache_dir"`
	Size     int    `yaml:"size"`
	Quality  int    `yaml:"quality"`
}

// Telegram holds the configuration for the notification bot.
type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	ChatID       int64    `yaml:"chat_id"`
}
