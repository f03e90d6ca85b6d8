package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rmoura-dev/provisor/pkg/lifecycle"
)

const sweepTimeout = 30 * time.Second

// Reaper periodically forces jobs that have sat in an active state past the
// staleness window to failed, covering jobs orphaned by a crash or shutdown.
// Reaped jobs flow through the same sink as ordinary failures so the
// conversation still receives a terminal message.
type Reaper struct {
	store  Store
	sink   Sink
	cfg    Config
	cron   *cron.Cron
	logger *slog.Logger
}

// NewReaper creates a Reaper.
func NewReaper(store Store, sink Sink, cfg Config, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:  store,
		sink:   sink,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger.With("system", "reaper"),
	}
}

// Start schedules the sweep and registers a shutdown hook that stops the
// scheduler and waits for a running sweep to finish.
func (r *Reaper) Start(lc *lifecycle.Coordinator) error {
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.cfg.ReapInterval), r.sweep); err != nil {
		return fmt.Errorf("schedule reaper: %w", err)
	}

	r.cron.Start()
	r.logger.Info("reaper started", "interval", r.cfg.ReapInterval, "stale_after", r.cfg.StaleAfter)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-r.cron.Stop().Done()
		r.logger.Info("reaper stopped")
	})

	return nil
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cutoff := time.Now().Add(-r.cfg.StaleAfterDuration())
	reaped, err := r.store.ReapStale(ctx, cutoff)
	if err != nil {
		r.logger.Error("sweep failed", "error", err)
		return
	}

	for i := range reaped {
		job := &reaped[i]
		r.logger.Warn("reaped stale job", "id", job.ID, "sku", job.SKU, "created_at", job.CreatedAt)
		r.sink.JobFailed(ctx, job)
	}
}
