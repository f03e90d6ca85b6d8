package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/pagination"
)

// System defines the public contract for audit domain operations.
type System interface {
	Handler() *Handler

	Append(ctx context.Context, cmd AppendCommand) (*Record, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id uuid.UUID) (*Record, error)
}
