// Package config loads canvaspal settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	// BaseURL of the Canvas instance.
	BaseURL string `yaml:"base_url"`

	// TokenDir holds one bearer token per .txt file.
	TokenDir string `yaml:"token_dir"`

	RefreshInterval time.Duration `yaml:"refresh_interval"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	UserAgent       string        `yaml:"user_agent"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	// RedisURL enables shared quota tracking, e.g. "redis://localhost:6379/0".
	RedisURL string `yaml:"redis_url"`

	// MetricsAddr serves /metrics and /health in watch mode, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:         "https://canvas.instructure.com",
		TokenDir:        "canvasPAL_tokens",
		RefreshInterval: time.Hour,
		UserAgent:       "canvaspal/0.1.0",
		LogLevel:        "info",
		LogPretty:       logging.IsTerminal(os.Stderr),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/canvaspal/config.yaml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find user config directory: %w", err)
	}
	return filepath.Join(dir, "canvaspal", "config.yaml"), nil
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.BaseURL = getEnv("CANVAS_URL", c.BaseURL)
	c.TokenDir = getEnv("CANVAS_TOKEN_DIR", c.TokenDir)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)

	var err error
	if c.RefreshInterval, err = getDuration("CANVAS_REFRESH_INTERVAL", c.RefreshInterval); err != nil {
		return err
	}
	if c.HTTPTimeout, err = getDuration("CANVAS_HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) url (got %q)", c.BaseURL)
	}
	if c.TokenDir == "" {
		return fmt.Errorf("token_dir is required")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive (got %s)", c.RefreshInterval)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative (got %s)", c.HTTPTimeout)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if err := logging.ValidateLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
