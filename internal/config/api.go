package config

import (
	"fmt"
	"os"

	"github.com/rmoura-dev/provisor/pkg/formatting"
	"github.com/rmoura-dev/provisor/pkg/middleware"
	"github.com/rmoura-dev/provisor/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PROVISOR_CORS_ENABLED",
	Origins:          "PROVISOR_CORS_ORIGINS",
	AllowedMethods:   "PROVISOR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PROVISOR_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PROVISOR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "PROVISOR_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "PROVISOR_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PROVISOR_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, pagination, and pub/sub settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	EventBuffer int                   `toml:"event_buffer"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxBodySizeBytes returns the request body limit in bytes. The limit bounds
// request framing only; stored message content is unbounded.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 10 * 1024 * 1024 // 10MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	if overlay.EventBuffer != 0 {
		c.EventBuffer = overlay.EventBuffer
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = 16
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("PROVISOR_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("PROVISOR_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
