package conversations

import (
	"github.com/rmoura-dev/provisor/pkg/query"
	"github.com/rmoura-dev/provisor/pkg/repository"
)

var conversationProjection = query.
	NewProjectionMap("public", "conversations", "c").
	Project("id", "ID").
	Project("created_at", "CreatedAt")

var messageProjection = query.
	NewProjectionMap("public", "messages", "m").
	Project("id", "ID").
	Project("conversation_id", "ConversationID").
	Project("sender", "Sender").
	Project("content", "Content").
	Project("metadata", "Metadata").
	Project("created_at", "CreatedAt")

var conversationSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Messages read oldest-first so pages reconstruct the transcript in order.
var messageSort = query.SortField{
	Field: "CreatedAt",
}

func scanConversation(s repository.Scanner) (Conversation, error) {
	var c Conversation
	err := s.Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func scanMessage(s repository.Scanner) (Message, error) {
	var m Message
	var metadata []byte

	err := s.Scan(
		&m.ID,
		&m.ConversationID,
		&m.Sender,
		&m.Content,
		&metadata,
		&m.CreatedAt,
	)
	if err != nil {
		return m, err
	}

	if len(metadata) > 0 {
		m.Metadata = metadata
	}

	return m, nil
}
