package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TURNOVER_CONFIG is set
//  3. env (prefix TURNOVER_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TURNOVER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TURNOVER_ADDR, TURNOVER_DB_PATH, ...
	// Map env keys like TURNOVER_DB_PATH -> db_path (flat keys, underscores
	// preserved to match koanf tags on the struct).
	envProvider := env.Provider("TURNOVER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "turnover_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	switch c.AuthMode {
	case "jwt":
		if c.AuthJWTSecret == "" {
			return fmt.Errorf("%w: auth_jwt_secret required in jwt mode", ErrInvalidConfig)
		}
	case "remote":
		if c.AuthURL == "" {
			return fmt.Errorf("%w: auth_url required in remote mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth_mode %q", ErrInvalidConfig, c.AuthMode)
	}
	if c.TopRatedMinRating < 1 || c.TopRatedMinRating > 5 {
		return fmt.Errorf("%w: top_rated_min_rating must be 1-5", ErrInvalidConfig)
	}
	if c.TopRatedLimit < 1 {
		return fmt.Errorf("%w: top_rated_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
