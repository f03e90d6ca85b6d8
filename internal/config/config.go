// Package config loads and finalizes the root service configuration from
// config.toml, an optional environment overlay, and PROVISOR_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rmoura-dev/provisor/internal/jobs"
	"github.com/rmoura-dev/provisor/internal/llm"
	"github.com/rmoura-dev/provisor/internal/pipeline"
	"github.com/rmoura-dev/provisor/internal/tools"
	"github.com/rmoura-dev/provisor/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvProvisorEnv             = "PROVISOR_ENV"
	EnvProvisorShutdownTimeout = "PROVISOR_SHUTDOWN_TIMEOUT"
	EnvProvisorVersion         = "PROVISOR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PROVISOR_DB_HOST",
	Port:            "PROVISOR_DB_PORT",
	Name:            "PROVISOR_DB_NAME",
	User:            "PROVISOR_DB_USER",
	Password:        "PROVISOR_DB_PASSWORD",
	SSLMode:         "PROVISOR_DB_SSL_MODE",
	MaxOpenConns:    "PROVISOR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROVISOR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROVISOR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROVISOR_DB_CONN_TIMEOUT",
}

var agentEnv = &llm.Env{
	Provider:   "PROVISOR_AGENT_PROVIDER",
	BaseURL:    "PROVISOR_AGENT_BASE_URL",
	Token:      "PROVISOR_AGENT_TOKEN",
	Model:      "PROVISOR_AGENT_MODEL",
	Deployment: "PROVISOR_AGENT_DEPLOYMENT",
	APIVersion: "PROVISOR_AGENT_API_VERSION",
	AuthType:   "PROVISOR_AGENT_AUTH_TYPE",
}

var toolsEnv = &tools.Env{
	BaseURL: "PROVISOR_TOOLS_BASE_URL",
	Timeout: "PROVISOR_TOOLS_TIMEOUT",
}

var pipelineEnv = &pipeline.Env{
	StageTimeout:    "PROVISOR_PIPELINE_STAGE_TIMEOUT",
	ConfidenceFloor: "PROVISOR_PIPELINE_CONFIDENCE_FLOOR",
}

var jobsEnv = &jobs.Env{
	Workers:    "PROVISOR_JOBS_WORKERS",
	JobTimeout: "PROVISOR_JOBS_TIMEOUT",
}

// Config is the root configuration for the Provisor service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Agent           llm.Config      `toml:"agent"`
	Tools           tools.Config    `toml:"tools"`
	Pipeline        pipeline.Config `toml:"pipeline"`
	Jobs            jobs.Config     `toml:"jobs"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PROVISOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvProvisorEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Agent.Merge(&overlay.Agent)
	c.Tools.Merge(&overlay.Tools)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Jobs.Merge(&overlay.Jobs)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Agent.Finalize(agentEnv); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Tools.Finalize(toolsEnv); err != nil {
		return fmt.Errorf("tools: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Jobs.Finalize(jobsEnv); err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvProvisorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvProvisorVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvProvisorEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
