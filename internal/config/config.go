package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// GroupToken authorizes the community account that talks to users
	GroupToken string
	// UserToken authorizes the account used for profile search
	UserToken string

	// DBDriver selects the session/favorites store: sqlite, postgres or memory
	DBDriver    string
	DatabaseDSN string

	// AgeWindow widens the requested age into [age-AgeWindow, age+AgeWindow]
	AgeWindow int
	// SearchLimit caps how many profiles one search materializes
	SearchLimit int
	// GatewayTimeout bounds every call to the VK API
	GatewayTimeout time.Duration
	// Workers caps how many users are processed concurrently
	Workers int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		GroupToken:     os.Getenv("GROUP_TOKEN"),
		UserToken:      os.Getenv("USER_TOKEN"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DatabaseDSN:    envOr("DATABASE_DSN", "./matchbot.db"),
		AgeWindow:      envIntOr("AGE_WINDOW", 5),
		SearchLimit:    envIntOr("SEARCH_LIMIT", 10),
		GatewayTimeout: envDurationOr("GATEWAY_TIMEOUT", 10*time.Second),
		Workers:        envIntOr("WORKERS", 4),
	}

	if cfg.GroupToken == "" || cfg.UserToken == "" {
		return nil, fmt.Errorf("GROUP_TOKEN and USER_TOKEN must be set")
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.AgeWindow < 0 {
		return nil, fmt.Errorf("AGE_WINDOW must not be negative")
	}
	if cfg.SearchLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_LIMIT must be positive")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("WORKERS must be positive")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
