// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors are wrapped via this package's error helpers.
package config

import (
	"github.com/turnoverhq/turnover/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath points at the SQLite database file; ":memory:" for ephemeral.
	DBPath string `koanf:"db_path"`

	// AuthMode selects token verification: "remote" delegates to the hosted
	// provider, "jwt" verifies HS256 tokens locally.
	AuthMode string `koanf:"auth_mode"`

	// AuthURL is the hosted auth provider base URL (remote mode).
	AuthURL string `koanf:"auth_url"`

	// AuthAPIKey is the provider project key sent with verification calls.
	AuthAPIKey string `koanf:"auth_api_key"`

	// AuthJWTSecret is the HS256 signing secret (jwt mode).
	AuthJWTSecret string `koanf:"auth_jwt_secret"`

	// AllowRepeatRetire permits retiring the same shoe more than once,
	// producing multiple graveyard entries.
	AllowRepeatRetire bool `koanf:"allow_repeat_retire"`

	// TopRatedMinRating and TopRatedLimit shape the "loved shoes" input to
	// the recommendation scorer.
	TopRatedMinRating int `koanf:"top_rated_min_rating"`
	TopRatedLimit     int `koanf:"top_rated_limit"`

	// Scoring carries the scorer weight configuration.
	Scoring scoring.Weights `koanf:"scoring"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		DBPath:            "turnover.db",
		AuthMode:          "jwt",
		AuthJWTSecret:     "dev-secret-change-me",
		AllowRepeatRetire: false,
		TopRatedMinRating: 4,
		TopRatedLimit:     5,
		Scoring:           scoring.DefaultWeights(),
	}
}
