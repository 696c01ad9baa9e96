package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// config is the configuration of the demo, read from environment variables.
type config struct {
	// Store selects the backend for aggregate state and events. It is one of
	// "memory", "bolt", "sqlite", "postgres" or "redis".
	Store string `env:"ESCF_STORE" envDefault:"memory"`

	BoltPath    string `env:"ESCF_BOLT_PATH" envDefault:"basicauth.bolt"`
	SQLitePath  string `env:"ESCF_SQLITE_PATH" envDefault:"basicauth.sqlite"`
	PostgresDSN string `env:"ESCF_POSTGRES_DSN"`
	RedisAddr   string `env:"ESCF_REDIS_ADDR" envDefault:"localhost:6379"`

	// KafkaBrokers is the list of brokers to which events are published. If
	// it is empty, events are not published.
	KafkaBrokers []string `env:"ESCF_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"ESCF_KAFKA_TOPIC" envDefault:"escf.basicauth"`

	// LogMode is either "development" or "production".
	LogMode string `env:"ESCF_LOG_MODE" envDefault:"development"`
}

// parseConfig loads the configuration from the environment.
func parseConfig() (config, error) {
	var cfg config

	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Store {
	case "memory", "bolt", "sqlite", "redis":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return config{}, fmt.Errorf("ESCF_POSTGRES_DSN is required when ESCF_STORE is postgres")
		}
	default:
		return config{}, fmt.Errorf("unrecognized store: %q", cfg.Store)
	}

	switch cfg.LogMode {
	case "development", "production":
	default:
		return config{}, fmt.Errorf("unrecognized log mode: %q", cfg.LogMode)
	}

	return cfg, nil
}
