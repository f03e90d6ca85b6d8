package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/lifecycle"
)

// terminalWriteTimeout bounds the persistence of a terminal state after the
// job context itself has expired.
const terminalWriteTimeout = 15 * time.Second

// RunFunc executes the analysis for one job and returns its serialized result.
type RunFunc func(ctx context.Context, job *Job) (json.RawMessage, error)

// Sink receives terminal job notifications. Implementations persist the
// durable outputs (message, audit record) and publish the live event.
type Sink interface {
	JobCompleted(ctx context.Context, job *Job)
	JobFailed(ctx context.Context, job *Job)
}

// Dispatcher schedules analysis jobs onto a bounded worker pool. Submission
// is synchronous and cheap; execution happens out-of-band on workers bound to
// the application lifecycle.
type Dispatcher struct {
	store  Store
	run    RunFunc
	sink   Sink
	cfg    Config
	logger *slog.Logger
	queue  chan *Job
	base   context.Context
}

// NewDispatcher creates a Dispatcher. Start must be called before Submit.
func NewDispatcher(store Store, run RunFunc, sink Sink, cfg Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		run:    run,
		sink:   sink,
		cfg:    cfg,
		logger: logger.With("system", "dispatcher"),
		queue:  make(chan *Job, cfg.QueueSize),
	}
}

// Start launches the worker pool tied to the lifecycle context. Workers drain
// until the context is cancelled; in-flight jobs are bounded by the job
// timeout and anything still queued at shutdown is recovered by the reaper.
func (d *Dispatcher) Start(lc *lifecycle.Coordinator) error {
	d.base = lc.Context()

	for i := 0; i < d.cfg.Workers; i++ {
		go d.worker(i)
	}

	d.logger.Info("dispatcher started", "workers", d.cfg.Workers, "queue_size", d.cfg.QueueSize)
	return nil
}

// Submit atomically creates a pending job for (sku, conversation) and queues
// it for execution. A duplicate active job is rejected with ErrDuplicate; a
// full queue rejects with ErrQueueFull without leaving a pending job behind.
func (d *Dispatcher) Submit(ctx context.Context, sku string, conversationID uuid.UUID, quantity int) (*Job, error) {
	job, err := d.store.Insert(ctx, sku, conversationID, quantity)
	if err != nil {
		return nil, err
	}

	select {
	case d.queue <- job:
		return job, nil
	default:
		d.logger.Warn("queue full, rejecting job", "id", job.ID, "sku", sku)
		if _, ferr := d.store.Fail(ctx, job.ID, ErrQueueFull.Error()); ferr != nil {
			d.logger.Error("failed to mark rejected job", "id", job.ID, "error", ferr)
		}
		return nil, ErrQueueFull
	}
}

func (d *Dispatcher) worker(id int) {
	logger := d.logger.With("worker", id)

	for {
		select {
		case <-d.base.Done():
			logger.Debug("worker stopping")
			return
		case job := <-d.queue:
			d.execute(logger, job)
		}
	}
}

// execute runs one job under the hard job timeout and drives it to a
// terminal state. Terminal writes use a fresh context so an expired job
// context cannot prevent the state transition from persisting.
func (d *Dispatcher) execute(logger *slog.Logger, job *Job) {
	ctx, cancel := context.WithTimeout(d.base, d.cfg.JobTimeoutDuration())
	defer cancel()

	if err := d.store.MarkRunning(ctx, job.ID); err != nil {
		logger.Warn("job not runnable, skipping", "id", job.ID, "error", err)
		return
	}

	logger.Info("job running", "id", job.ID, "sku", job.SKU)
	result, err := d.run(ctx, job)

	tctx, tcancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer tcancel()

	if err != nil {
		failed, serr := d.store.Fail(tctx, job.ID, err.Error())
		if serr != nil {
			logger.Error("failed to persist job failure", "id", job.ID, "error", serr)
			return
		}
		d.sink.JobFailed(tctx, failed)
		return
	}

	completed, serr := d.store.Complete(tctx, job.ID, result)
	if serr != nil {
		logger.Error("failed to persist job completion", "id", job.ID, "error", serr)
		return
	}
	d.sink.JobCompleted(tctx, completed)
}
