// Package config reads server settings from ZBIRKA_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "ZBIRKA"

// Config holds the server settings. Command-line flags override DB, Addr and
// LogPath.
type Config struct {
	DB              string        `envconfig:"DB" default:"zbirka.sqlite3"`
	Addr            string        `envconfig:"ADDR" default:"127.0.0.1:3456"`
	LogPath         string        `envconfig:"LOG"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	MaxUploadMB     int64         `envconfig:"MAX_UPLOAD_MB" default:"50"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Load reads the configuration from ZBIRKA_* environment variables and
// validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("%s_DB must not be empty", EnvPrefix)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%s_ADDR must not be empty", EnvPrefix)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%s_MAX_UPLOAD_MB must be positive, got %d", EnvPrefix, c.MaxUploadMB)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s_SHUTDOWN_TIMEOUT must be positive, got %s", EnvPrefix, c.ShutdownTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s_LOG_LEVEL: %w", EnvPrefix, err)
	}
	return level, nil
}
