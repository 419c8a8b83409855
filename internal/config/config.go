// Package config loads dashboard settings from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "pipenet.yaml"

// Config is the complete dashboard configuration.
type Config struct {
	Backend   BackendConfig   `yaml:"backend" json:"backend"`
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`
	Redis     RedisConfig     `yaml:"redis" json:"redis"`
	Log       LogConfig       `yaml:"log" json:"log"`
}

// BackendConfig points at the plant backend.
type BackendConfig struct {
	URL     string        `yaml:"url" json:"url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`
	Burst     int     `yaml:"burst" json:"burst" validate:"gte=0"`
}

// DashboardConfig controls the refresh loop and the HTTP surface.
type DashboardConfig struct {
	Listen           string        `yaml:"listen" json:"listen" validate:"required,hostname_port"`
	RefreshInterval  time.Duration `yaml:"refresh_interval" json:"refresh_interval" validate:"gte=100ms"`
	StrictCollisions bool          `yaml:"strict_collisions" json:"strict_collisions"`
	ValidateRequests bool          `yaml:"validate_requests" json:"validate_requests"`
}

// RedisConfig enables cross-instance invalidation when Address is set.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address" validate:"omitempty,hostname_port"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db" validate:"gte=0"`
	Channel  string `yaml:"channel" json:"channel"`
}

// LogConfig selects level and output format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// Default returns a configuration suitable for a local backend.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:       "http://localhost:5000",
			Timeout:   5 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		Dashboard: DashboardConfig{
			Listen:          ":8080",
			RefreshInterval: 5 * time.Second,
		},
		Redis: RedisConfig{
			Channel: "pipenet:topology:invalidate",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
