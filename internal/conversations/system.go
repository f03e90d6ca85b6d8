package conversations

import (
	"context"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/pagination"
)

// System defines the public contract for conversation domain operations.
type System interface {
	Handler() *Handler

	Create(ctx context.Context) (*Conversation, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Conversation], error)
	Find(ctx context.Context, id uuid.UUID) (*Conversation, error)

	Messages(ctx context.Context, id uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Message], error)
	Append(ctx context.Context, id uuid.UUID, cmd AppendCommand) (*Message, error)
	History(ctx context.Context, id uuid.UUID, limit int) ([]Message, error)
}
