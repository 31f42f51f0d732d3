package config

import (
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `envconfig:"DISCORD_TOKEN"`

	// Database configuration
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Reward action tuning
	WorkMinReward int64 `envconfig:"WORK_MIN_REWARD" default:"10"`
	WorkMaxReward int64 `envconfig:"WORK_MAX_REWARD" default:"50"`

	// Hour in UTC when the daily transaction digest is posted (0-23)
	DigestHour int `envconfig:"DIGEST_HOUR" default:"12"`

	// Environment is "development", "production" or "test"
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if config.WorkMinReward < 1 || config.WorkMaxReward < config.WorkMinReward {
		return nil, fmt.Errorf("invalid work reward range [%d,%d]", config.WorkMinReward, config.WorkMaxReward)
	}
	if config.DigestHour < 0 || config.DigestHour > 23 {
		return nil, fmt.Errorf("DIGEST_HOUR must be 0-23, got %d", config.DigestHour)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return &config, nil
}
