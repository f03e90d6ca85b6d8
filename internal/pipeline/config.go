package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/rmoura-dev/provisor/internal/intent"
)

// Config holds pipeline execution tunables.
type Config struct {
	StageTimeout     string `toml:"stage_timeout"`
	MaxRetries       int    `toml:"max_retries"`
	ConfidenceFloor  string `toml:"confidence_floor"`
	PriceHorizonDays int    `toml:"price_horizon_days"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	StageTimeout    string
	ConfidenceFloor string
}

// StageTimeoutDuration returns StageTimeout as a time.Duration.
func (c *Config) StageTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StageTimeout)
	return d
}

// Floor returns the configured confidence floor below which an approval is
// downgraded to manual review.
func (c *Config) Floor() intent.Confidence {
	return intent.Confidence(c.ConfidenceFloor)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.StageTimeout != "" {
		c.StageTimeout = overlay.StageTimeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.ConfidenceFloor != "" {
		c.ConfidenceFloor = overlay.ConfidenceFloor
	}
	if overlay.PriceHorizonDays != 0 {
		c.PriceHorizonDays = overlay.PriceHorizonDays
	}
}

func (c *Config) loadDefaults() {
	if c.StageTimeout == "" {
		c.StageTimeout = "45s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.ConfidenceFloor == "" {
		c.ConfidenceFloor = string(intent.ConfidenceMedium)
	}
	if c.PriceHorizonDays == 0 {
		c.PriceHorizonDays = 30
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.StageTimeout != "" {
		if v := os.Getenv(env.StageTimeout); v != "" {
			c.StageTimeout = v
		}
	}
	if env.ConfidenceFloor != "" {
		if v := os.Getenv(env.ConfidenceFloor); v != "" {
			c.ConfidenceFloor = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.StageTimeout); err != nil {
		return fmt.Errorf("invalid stage_timeout: %w", err)
	}
	switch intent.Confidence(c.ConfidenceFloor) {
	case intent.ConfidenceHigh, intent.ConfidenceMedium, intent.ConfidenceLow:
	default:
		return fmt.Errorf("invalid confidence_floor: %s", c.ConfidenceFloor)
	}
	return nil
}
