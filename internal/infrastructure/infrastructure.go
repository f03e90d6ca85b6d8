// Package infrastructure provides core service initialization for application
// startup. It assembles the shared dependencies (logging, database, pub/sub,
// read tools, model caller) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rmoura-dev/provisor/internal/config"
	"github.com/rmoura-dev/provisor/internal/llm"
	"github.com/rmoura-dev/provisor/internal/tools"
	"github.com/rmoura-dev/provisor/pkg/database"
	"github.com/rmoura-dev/provisor/pkg/lifecycle"
	"github.com/rmoura-dev/provisor/pkg/pubsub"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Broker    *pubsub.Broker
	Tools     tools.System
	Caller    llm.Caller
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Broker:    pubsub.New(cfg.API.EventBuffer, logger),
		Tools:     tools.New(&cfg.Tools, logger),
		Caller:    llm.New(cfg.Agent.AgentConfig()),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Broker.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("broker start failed: %w", err)
	}
	return nil
}
