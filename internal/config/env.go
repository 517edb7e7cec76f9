// Package config reads the BUNKER_* environment into a Config.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	Seed       int64  `env:"BUNKER_SEED" envDefault:"0"`
	Days       int    `env:"BUNKER_DAYS" envDefault:"30"`
	LogLevel   string `env:"BUNKER_LOG_LEVEL" envDefault:"warn"`
	TablesPath string `env:"BUNKER_TABLES"`
	SoundDir   string `env:"BUNKER_SOUND_DIR"`

	AI   AIConfig   `envPrefix:"BUNKER_AI_"`
	Save SaveConfig `envPrefix:"BUNKER_SAVE_"`
}

// AIConfig selects the Gemini backend. With neither APIKey nor Project set
// the game runs on its canned responses.
type AIConfig struct {
	APIKey   string        `env:"API_KEY"`
	Project  string        `env:"PROJECT"`
	Location string        `env:"LOCATION" envDefault:"us-central1"`
	Model    string        `env:"MODEL"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

type SaveConfig struct {
	Backend string `env:"BACKEND" envDefault:"json"`
	Dir     string `env:"DIR"`
	Path    string `env:"PATH"`
	Slot    string `env:"SLOT" envDefault:"autosave"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Days < 1 {
		return fmt.Errorf("BUNKER_DAYS must be at least 1, got %d", c.Days)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Save.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("BUNKER_SAVE_BACKEND must be %s or %s, got %q", BackendJSON, BackendSQLite, c.Save.Backend)
	}
	if c.AI.Timeout < 0 {
		return errors.New("BUNKER_AI_TIMEOUT must not be negative")
	}
	return nil
}

func (c Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func parseLevel(raw string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("BUNKER_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" || strings.TrimSpace(c.Project) != ""
}

// SaveLocation is the directory for the json backend or the database file
// for sqlite, defaulting under the user's config directory.
func (c Config) SaveLocation() (string, error) {
	switch c.Save.Backend {
	case BackendSQLite:
		if c.Save.Path != "" {
			return c.Save.Path, nil
		}
		dir, err := appDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "bunker.db"), nil
	default:
		if c.Save.Dir != "" {
			return c.Save.Dir, nil
		}
		dir, err := appDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "saves"), nil
	}
}

func appDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	if base == "" {
		return "", errors.New("config directory not found")
	}
	return filepath.Join(base, "bunker"), nil
}
