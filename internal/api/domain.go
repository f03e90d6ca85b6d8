package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rmoura-dev/provisor/internal/audit"
	"github.com/rmoura-dev/provisor/internal/chat"
	"github.com/rmoura-dev/provisor/internal/config"
	"github.com/rmoura-dev/provisor/internal/conversations"
	"github.com/rmoura-dev/provisor/internal/intent"
	"github.com/rmoura-dev/provisor/internal/jobs"
	"github.com/rmoura-dev/provisor/internal/pipeline"
	"github.com/rmoura-dev/provisor/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Conversations conversations.System
	Audit         audit.System
	Chat          chat.System
	Jobs          jobs.Store

	dispatcher *jobs.Dispatcher
	reaper     *jobs.Reaper
	jobsCfg    jobs.Config
}

// NewDomain creates all domain systems from the API runtime, wiring the
// analysis pipeline into the dispatcher and its result sink.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	convsSystem := conversations.New(db, runtime.Logger, runtime.Pagination)
	contextStore := conversations.NewContextStore(db)
	auditSystem := audit.New(db, runtime.Logger, runtime.Pagination)

	runner := pipeline.NewRunner(runtime.Caller, runtime.Tools, cfg.Pipeline, runtime.Logger)
	sink := chat.NewResultSink(convsSystem, auditSystem, runtime.Broker, runtime.Logger)

	jobStore := jobs.NewStore(db, runtime.Logger, runtime.Pagination)
	dispatcher := jobs.NewDispatcher(jobStore, runJob(runner), sink, cfg.Jobs, runtime.Logger)
	reaper := jobs.NewReaper(jobStore, sink, cfg.Jobs, runtime.Logger)

	extractor := intent.NewExtractor(runtime.Caller, runtime.Tools, runtime.Logger)
	responder := chat.NewResponder(runtime.Tools, cfg.Pipeline.PriceHorizonDays, runtime.Logger)

	chatSystem := chat.New(
		convsSystem,
		contextStore,
		extractor,
		responder,
		dispatcher,
		runtime.Broker,
		runtime.Logger,
		runtime.Pagination,
		cfg.API.MaxBodySizeBytes(),
	)

	return &Domain{
		Conversations: convsSystem,
		Audit:         auditSystem,
		Chat:          chatSystem,
		Jobs:          jobStore,
		dispatcher:    dispatcher,
		reaper:        reaper,
		jobsCfg:       cfg.Jobs,
	}
}

// Start launches the background systems (worker pool and reaper) against the
// lifecycle coordinator.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	if err := d.dispatcher.Start(lc); err != nil {
		return fmt.Errorf("dispatcher start failed: %w", err)
	}
	if err := d.reaper.Start(lc); err != nil {
		return fmt.Errorf("reaper start failed: %w", err)
	}
	return nil
}

// runJob adapts the pipeline runner to the dispatcher's RunFunc contract.
func runJob(runner *pipeline.Runner) jobs.RunFunc {
	return func(ctx context.Context, job *jobs.Job) (json.RawMessage, error) {
		result, err := runner.Execute(ctx, job.SKU, job.Quantity)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}
}
