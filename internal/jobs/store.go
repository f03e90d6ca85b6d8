package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/pagination"
	"github.com/rmoura-dev/provisor/pkg/query"
	"github.com/rmoura-dev/provisor/pkg/repository"
)

// Store defines job state persistence. Insert enforces the single-active-job
// invariant; Complete and Fail transition a job to a terminal state exactly
// once, returning ErrTerminal on any later attempt.
type Store interface {
	Insert(ctx context.Context, sku string, conversationID uuid.UUID, quantity int) (*Job, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, result []byte) (*Job, error)
	Fail(ctx context.Context, id uuid.UUID, message string) (*Job, error)
	Find(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Job], error)
	ReapStale(ctx context.Context, cutoff time.Time) ([]Job, error)
}

type store struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates a Store backed by the analysis_jobs table.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &store{
		db:         db,
		logger:     logger.With("system", "jobs"),
		pagination: pagination,
	}
}

// Insert creates a pending job. The partial unique index on
// (sku, conversation_id) for active statuses makes a concurrent duplicate
// lose atomically: exactly one insert wins, the other maps to ErrDuplicate.
func (s *store) Insert(ctx context.Context, sku string, conversationID uuid.UUID, quantity int) (*Job, error) {
	insertQ := fmt.Sprintf(`
		INSERT INTO analysis_jobs(sku, conversation_id, status, quantity)
		VALUES ($1, $2, 'pending', $3)
		RETURNING %s`, jobColumns)

	j, err := repository.QueryOne(ctx, s.db, insertQ, []any{sku, conversationID, quantity}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("job created", "id", j.ID, "sku", sku, "conversation_id", conversationID)
	return &j, nil
}

func (s *store) MarkRunning(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, s.db,
		"UPDATE analysis_jobs SET status = 'running', started_at = NOW() WHERE id = $1 AND status = 'pending'",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrTerminal, ErrDuplicate)
	}
	return nil
}

func (s *store) Complete(ctx context.Context, id uuid.UUID, result []byte) (*Job, error) {
	completeQ := fmt.Sprintf(`
		UPDATE analysis_jobs
		SET status = 'completed', result = $2, completed_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'running')
		RETURNING %s`, jobColumns)

	j, err := repository.QueryOne(ctx, s.db, completeQ, []any{id, result}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrTerminal, ErrDuplicate)
	}

	s.logger.Info("job completed", "id", j.ID, "sku", j.SKU)
	return &j, nil
}

func (s *store) Fail(ctx context.Context, id uuid.UUID, message string) (*Job, error) {
	failQ := fmt.Sprintf(`
		UPDATE analysis_jobs
		SET status = 'failed', error = $2, completed_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'running')
		RETURNING %s`, jobColumns)

	j, err := repository.QueryOne(ctx, s.db, failQ, []any{id, message}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrTerminal, ErrDuplicate)
	}

	s.logger.Info("job failed", "id", j.ID, "sku", j.SKU, "error", message)
	return &j, nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	j, err := repository.QueryOne(ctx, s.db, q, args, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &j, nil
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Job], error) {
	page.Normalize(s.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanJob)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// ReapStale forces every active job created before cutoff to failed and
// returns the jobs it transitioned.
func (s *store) ReapStale(ctx context.Context, cutoff time.Time) ([]Job, error) {
	reapQ := fmt.Sprintf(`
		UPDATE analysis_jobs
		SET status = 'failed', error = 'analysis timed out', completed_at = NOW()
		WHERE status IN ('pending', 'running') AND created_at < $1
		RETURNING %s`, jobColumns)

	reaped, err := repository.QueryMany(ctx, s.db, reapQ, []any{cutoff}, scanJob)
	if err != nil {
		return nil, fmt.Errorf("reap stale jobs: %w", err)
	}
	return reaped, nil
}
