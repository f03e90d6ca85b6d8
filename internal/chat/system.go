// Package chat implements the conversational flow: a submitted message is
// extracted into an intent, routed, and answered either synchronously, with a
// clarifying question, or by dispatching an asynchronous purchase analysis.
package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/internal/conversations"
	"github.com/rmoura-dev/provisor/internal/jobs"
)

// Reply is the immediate outcome of a submitted message: the persisted reply
// message, plus the accepted job when the message started an analysis.
type Reply struct {
	Message *conversations.Message `json:"message"`
	Job     *jobs.Job              `json:"job,omitempty"`
}

// System defines the public contract for the chat flow.
type System interface {
	Handler() *Handler

	Submit(ctx context.Context, conversationID uuid.UUID, text string) (*Reply, error)
}
