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
//  2. file (YAML) if RIFTSCOPE_CONFIG is set
//  3. env (prefix RIFTSCOPE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RIFTSCOPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RIFTSCOPE_ADDR, RIFTSCOPE_RIOT_MAX_CONCURRENT, ...
	// Map env keys like RIFTSCOPE_RIOT_API_KEY -> riot_api_key (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RIFTSCOPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "riftscope_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis":
		return fmt.Errorf("%w: cache_backend must be memory or redis", ErrInvalidConfig)
	case cfg.CacheBackend == "redis" && cfg.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr required for redis cache backend", ErrInvalidConfig)
	case cfg.QueuePollIntervalMS <= 0:
		return fmt.Errorf("%w: queue_poll_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
