// Package api assembles the API module: domain systems, background workers,
// and route registration behind the configured base path.
package api

import (
	"net/http"

	"github.com/rmoura-dev/provisor/internal/config"
	"github.com/rmoura-dev/provisor/internal/infrastructure"
	"github.com/rmoura-dev/provisor/pkg/middleware"
	"github.com/rmoura-dev/provisor/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and starts the dispatcher worker pool and job reaper.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
