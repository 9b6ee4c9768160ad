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

// Load builds a Config by layering (low -> high precedence):
//  1. defaults (New())
//  2. YAML file if ESGB_CONFIG is set
//  3. env vars with prefix ESGB_ (ESGB_MIN_SAMPLE_SIZE -> min_sample_size)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ESGB_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Flat env keys; underscores preserved to match the koanf struct tags.
	envProvider := env.Provider("ESGB_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "esgb_")
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
	case cfg.MinSampleSize < 1:
		return fmt.Errorf("%w: min_sample_size must be >= 1", ErrInvalidConfig)
	case cfg.AggregationThreshold < 1:
		return fmt.Errorf("%w: aggregation_threshold must be >= 1", ErrInvalidConfig)
	case cfg.ShardCount < 1:
		return fmt.Errorf("%w: shard_count must be >= 1", ErrInvalidConfig)
	case cfg.CacheSize < 1:
		return fmt.Errorf("%w: cache_size must be >= 1", ErrInvalidConfig)
	case cfg.SimilarityTolerance <= 0 || cfg.SimilarityTolerance >= 1:
		return fmt.Errorf("%w: similarity_tolerance must be in (0,1)", ErrInvalidConfig)
	case cfg.TrendYears < 1:
		return fmt.Errorf("%w: trend_years must be >= 1", ErrInvalidConfig)
	}
	return nil
}
