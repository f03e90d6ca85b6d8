package api

import (
	"github.com/rmoura-dev/provisor/internal/config"
	"github.com/rmoura-dev/provisor/internal/infrastructure"
	"github.com/rmoura-dev/provisor/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Broker:    infra.Broker,
			Tools:     infra.Tools,
			Caller:    infra.Caller,
		},
		Pagination: cfg.API.Pagination,
	}
}
