// Package config loads server configuration from the environment. A .env
// file in the working directory is honored when present.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/moimlab/settleup/internal/roles"
)

// Config holds all runtime settings.
type Config struct {
	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"8080"`

	// DBPath is the SQLite database file path.
	DBPath string `env:"DB_PATH" envDefault:"./data/settleup.db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// RosterPath points to the roster JSON file used to build role presets.
	// Empty means no roster is configured and the built-in defaults apply.
	RosterPath string `env:"ROSTER_PATH"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// rosterFile mirrors the roster directory's JSON export: one name list per
// role.
type rosterFile struct {
	Mentors    []string `json:"mentors"`
	Managers   []string `json:"managers"`
	Angels     []string `json:"angels"`
	Supporters []string `json:"supporters"`
	Buddies    []string `json:"buddies"`
}

// LoadRoster reads role presets from the given JSON file. Callers decide the
// fallback when no path is configured; this function never substitutes
// defaults on its own.
func LoadRoster(path string) (roles.Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return roles.Presets{}, fmt.Errorf("failed to read roster file: %w", err)
	}

	var rf rosterFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return roles.Presets{}, fmt.Errorf("failed to parse roster file: %w", err)
	}

	return roles.Presets{
		Mentors:    rf.Mentors,
		Managers:   rf.Managers,
		Angels:     rf.Angels,
		Supporters: rf.Supporters,
		Buddies:    rf.Buddies,
	}, nil
}
