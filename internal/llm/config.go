package llm

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Config holds language-model provider settings.
type Config struct {
	Name       string `toml:"name"`
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token"`
	Model      string `toml:"model"`
	Deployment string `toml:"deployment"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider   string
	BaseURL    string
	Token      string
	Model      string
	Deployment string
	APIVersion string
	AuthType   string
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
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Deployment != "" {
		c.Deployment = overlay.Deployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.AuthType != "" {
		c.AuthType = overlay.AuthType
	}
}

// AgentConfig converts the settings into a go-agents agent configuration.
func (c *Config) AgentConfig() gaconfig.AgentConfig {
	cfg := gaconfig.DefaultAgentConfig()

	overlay := gaconfig.AgentConfig{
		Name: c.Name,
		Provider: &gaconfig.ProviderConfig{
			Name:    c.Provider,
			BaseURL: c.BaseURL,
			Options: providerOptions(c),
		},
		Model: &gaconfig.ModelConfig{
			Name: c.Model,
		},
	}
	cfg.Merge(&overlay)

	return cfg
}

func providerOptions(c *Config) map[string]any {
	opts := make(map[string]any)
	if c.Token != "" {
		opts["token"] = c.Token
	}
	if c.Deployment != "" {
		opts["deployment"] = c.Deployment
	}
	if c.APIVersion != "" {
		opts["api_version"] = c.APIVersion
	}
	if c.AuthType != "" {
		opts["auth_type"] = c.AuthType
	}
	return opts
}

func (c *Config) loadDefaults() {
	if c.Name == "" {
		c.Name = "provisor"
	}
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "llama3.2"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(envVar string, dst *string) {
		if envVar != "" {
			if v := os.Getenv(envVar); v != "" {
				*dst = v
			}
		}
	}

	set(env.Provider, &c.Provider)
	set(env.BaseURL, &c.BaseURL)
	set(env.Token, &c.Token)
	set(env.Model, &c.Model)
	set(env.Deployment, &c.Deployment)
	set(env.APIVersion, &c.APIVersion)
	set(env.AuthType, &c.AuthType)
}

func (c *Config) validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	return nil
}
