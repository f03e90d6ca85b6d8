package conversations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ContextStore holds the session-scoped key/value map that carries resolved
// references (such as the current SKU) between turns. It is keyed solely by
// conversation id.
type ContextStore interface {
	Get(ctx context.Context, conversationID uuid.UUID) (map[string]string, error)
	Set(ctx context.Context, conversationID uuid.UUID, key, value string) error
}

type contextStore struct {
	db *sql.DB
}

// NewContextStore creates a ContextStore backed by the conversation_context
// table.
func NewContextStore(db *sql.DB) ContextStore {
	return &contextStore{db: db}
}

func (s *contextStore) Get(ctx context.Context, conversationID uuid.UUID) (map[string]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT key, value FROM conversation_context WHERE conversation_id = $1",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation context: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}

	return values, rows.Err()
}

func (s *contextStore) Set(ctx context.Context, conversationID uuid.UUID, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversation_context(conversation_id, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (conversation_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`,
		conversationID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set conversation context: %w", err)
	}
	return nil
}
