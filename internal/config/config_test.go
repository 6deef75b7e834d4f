package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "")

	path := filepath.Join(t.TempDir(), "overlaytv.toml")
	content := `
[database]
driver = "PostgreSQL"
url = "postgres://localhost/overlay"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.URL != "postgres://localhost/overlay" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if got := strings.Join(cfg.Server.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("origins = %q", got)
	}
	if cfg.Logging.Level != "debug" || cfg.Storage.PreviewDir != "./previews" {
		t.Errorf("logging/storage = %+v %+v", cfg.Logging, cfg.Storage)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
}

func TestLoadBadTOML(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[server\nport="), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"empty url", func(c *Config) { c.Database.URL = "" }, "database.url"},
		{"bad port", func(c *Config) { c.Server.Port = "http" }, "server.port"},
		{"port range", func(c *Config) { c.Server.Port = "70000" }, "server.port"},
		{"no origins", func(c *Config) { c.Server.AllowedOrigins = nil }, "allowed_origins"},
		{"zero timeout", func(c *Config) { c.Server.WriteTimeoutSeconds = 0 }, "timeouts"},
		{"no preview dir", func(c *Config) { c.Storage.PreviewDir = "" }, "preview_dir"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	cfg := Default()
	env := map[string]string{"PORT": "", "LOG_FORMAT": "json"}
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Server.Port != "8083" || cfg.Logging.Format != "json" {
		t.Errorf("server/logging = %q %q", cfg.Server.Port, cfg.Logging.Format)
	}
}
