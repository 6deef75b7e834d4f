package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Server holds the HTTP listener settings.
type Server struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// BaseURL prefixes stored preview URLs.
	BaseURL string `toml:"base_url"`
	// ShareBaseURL is the viewer page encoded into QR codes.
	ShareBaseURL string `toml:"share_base_url"`

	ReadTimeoutSeconds     int `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int `toml:"write_timeout_seconds"`
	IdleTimeoutSeconds     int `toml:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int `toml:"shutdown_timeout_seconds"`
}

// Database selects the document store backend.
type Database struct {
	Driver                 string `toml:"driver"`
	URL                    string `toml:"url"`
	MaxOpenConns           int    `toml:"max_open_conns"`
	MaxIdleConns           int    `toml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `toml:"conn_max_lifetime_minutes"`
}

// Storage holds preview snapshot settings.
type Storage struct {
	PreviewDir string `toml:"preview_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full service configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Storage  Storage  `toml:"storage"`
	Logging  Logging  `toml:"logging"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:                   "8083",
			AllowedOrigins:         []string{"http://localhost:5173"},
			ReadTimeoutSeconds:     10,
			WriteTimeoutSeconds:    30,
			IdleTimeoutSeconds:     60,
			ShutdownTimeoutSeconds: 30,
		},
		Database: Database{
			Driver:                 DriverSQLite,
			URL:                    "overlaytv.db",
			MaxOpenConns:           25,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 5,
		},
		Storage: Storage{PreviewDir: "./previews"},
		Logging: Logging{Level: "info", Format: "auto"},
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, a .env file outside production, and finally the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("PORT", &c.Server.Port)
	set("BASE_URL", &c.Server.BaseURL)
	set("SHARE_BASE_URL", &c.Server.ShareBaseURL)
	set("DATABASE_DRIVER", &c.Database.Driver)
	set("DATABASE_URL", &c.Database.URL)
	set("PREVIEW_DIR", &c.Storage.PreviewDir)
	set("LOG_LEVEL", &c.Logging.Level)
	set("LOG_FORMAT", &c.Logging.Format)

	// Comma separated, e.g. ALLOWED_ORIGINS=https://a.example,https://b.example
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "postgresql" {
		c.Database.Driver = DriverPostgres
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required. Set DATABASE_URL or edit the config file")
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return errors.New("database connection limits must not be negative")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("server.port must be a TCP port, got %q", c.Server.Port)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("server.allowed_origins must list at least one origin")
	}
	for _, t := range []int{c.Server.ReadTimeoutSeconds, c.Server.WriteTimeoutSeconds, c.Server.IdleTimeoutSeconds, c.Server.ShutdownTimeoutSeconds} {
		if t <= 0 {
			return errors.New("server timeouts must be positive")
		}
	}
	if c.Storage.PreviewDir == "" {
		return errors.New("storage.preview_dir must be set")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format must be auto, text or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
