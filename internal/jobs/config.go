package jobs

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds dispatcher and reaper tunables.
type Config struct {
	Workers      int    `toml:"workers"`
	QueueSize    int    `toml:"queue_size"`
	JobTimeout   string `toml:"job_timeout"`
	ReapInterval string `toml:"reap_interval"`
	StaleAfter   string `toml:"stale_after"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers    string
	JobTimeout string
}

// JobTimeoutDuration returns JobTimeout as a time.Duration.
func (c *Config) JobTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.JobTimeout)
	return d
}

// StaleAfterDuration returns StaleAfter as a time.Duration.
func (c *Config) StaleAfterDuration() time.Duration {
	d, _ := time.ParseDuration(c.StaleAfter)
	return d
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
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.JobTimeout != "" {
		c.JobTimeout = overlay.JobTimeout
	}
	if overlay.ReapInterval != "" {
		c.ReapInterval = overlay.ReapInterval
	}
	if overlay.StaleAfter != "" {
		c.StaleAfter = overlay.StaleAfter
	}
}

func (c *Config) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.QueueSize == 0 {
		c.QueueSize = 64
	}
	if c.JobTimeout == "" {
		c.JobTimeout = "5m"
	}
	if c.ReapInterval == "" {
		c.ReapInterval = "1m"
	}
	if c.StaleAfter == "" {
		c.StaleAfter = "10m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Workers = n
			}
		}
	}
	if env.JobTimeout != "" {
		if v := os.Getenv(env.JobTimeout); v != "" {
			c.JobTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	for name, value := range map[string]string{
		"job_timeout":   c.JobTimeout,
		"reap_interval": c.ReapInterval,
		"stale_after":   c.StaleAfter,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
