// Package conversations implements the conversation domain: sessions, their
// ordered message history, and the session-scoped context map used for
// pronoun resolution across turns.
package conversations

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

// Message senders.
const (
	SenderHuman  Sender = "human"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	switch s {
	case SenderHuman, SenderAgent, SenderSystem:
		return true
	}
	return false
}

// Conversation is a chat session owning an ordered sequence of messages.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single conversation entry. Content is unbounded text and must
// never be truncated. Messages are immutable once written.
type Message struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	Sender         Sender          `json:"sender"`
	Content        string          `json:"content"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AppendCommand carries the data needed to append a message.
type AppendCommand struct {
	Sender   Sender          `json:"sender"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}
