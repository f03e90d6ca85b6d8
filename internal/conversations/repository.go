package conversations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

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

// New creates a conversation repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "conversations"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context) (*Conversation, error) {
	q := "INSERT INTO conversations DEFAULT VALUES RETURNING id, created_at"

	c, err := repository.QueryOne(ctx, r.db, q, nil, scanConversation)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	r.logger.Info("conversation created", "id", c.ID)
	return &c, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Conversation], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(conversationProjection, conversationSort)
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanConversation)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	q, args := query.NewBuilder(conversationProjection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanConversation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Messages(
	ctx context.Context,
	id uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[Message], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(messageProjection, messageSort).
		WhereEquals("ConversationID", id).
		WhereSearch(page.Search, "Content")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Append(ctx context.Context, id uuid.UUID, cmd AppendCommand) (*Message, error) {
	if !cmd.Sender.Valid() {
		return nil, ErrInvalidSender
	}
	if cmd.Content == "" {
		return nil, ErrEmptyContent
	}

	insertQ := `
		INSERT INTO messages(conversation_id, sender, content, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, sender, content, metadata, created_at`

	var metadata any
	if len(cmd.Metadata) > 0 {
		metadata = []byte(cmd.Metadata)
	}

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Message, error) {
		var exists bool
		if err := tx.QueryRowContext(
			ctx,
			"SELECT EXISTS(SELECT 1 FROM conversations WHERE id = $1)",
			id,
		).Scan(&exists); err != nil {
			return Message{}, err
		}
		if !exists {
			return Message{}, ErrNotFound
		}

		return repository.QueryOne(
			ctx, tx, insertQ,
			[]any{id, string(cmd.Sender), cmd.Content, metadata},
			scanMessage,
		)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("message appended",
		"id", m.ID,
		"conversation_id", id,
		"sender", m.Sender,
	)
	return &m, nil
}

// History returns the most recent messages in chronological order, for use
// as extraction context.
func (r *repo) History(ctx context.Context, id uuid.UUID, limit int) ([]Message, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2`,
		messageProjection.Columns(), messageProjection.From(),
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{id, limit}, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	slices.Reverse(items)
	return items, nil
}
