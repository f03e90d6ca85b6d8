package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/pagination"
	"github.com/rmoura-dev/provisor/pkg/query"
	"github.com/rmoura-dev/provisor/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an audit repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "audit"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Append(ctx context.Context, cmd AppendCommand) (*Record, error) {
	insertQ := `
		INSERT INTO audit_records(
			agent_name, sku, action, decision, reasoning, context, actor_id, origin
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, agent_name, sku, action, decision, reasoning, context,
				  actor_id, origin, created_at`

	var decision, context any
	if len(cmd.Decision) > 0 {
		decision = []byte(cmd.Decision)
	}
	if len(cmd.Context) > 0 {
		context = []byte(cmd.Context)
	}

	args := []any{
		cmd.AgentName,
		cmd.SKU,
		cmd.Action,
		decision,
		cmd.Reasoning,
		context,
		cmd.ActorID,
		cmd.Origin,
	}

	rec, err := repository.QueryOne(ctx, r.db, insertQ, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("append audit record: %w", err)
	}

	r.logger.Info("audit record appended",
		"id", rec.ID,
		"agent_name", rec.AgentName,
		"sku", rec.SKU,
		"action", rec.Action,
	)
	return &rec, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Reasoning", "Action")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}
