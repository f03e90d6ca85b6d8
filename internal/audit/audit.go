// Package audit implements the append-only decision audit trail. One record
// is written per terminal analysis job; records are never updated or deleted.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is a single audit trail entry.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	AgentName string          `json:"agent_name"`
	SKU       string          `json:"sku"`
	Action    string          `json:"action"`
	Decision  json.RawMessage `json:"decision,omitempty"`
	Reasoning string          `json:"reasoning"`
	Context   json.RawMessage `json:"context,omitempty"`
	ActorID   string          `json:"actor_id"`
	Origin    string          `json:"origin"`
	CreatedAt time.Time       `json:"created_at"`
}

// AppendCommand carries the data needed to append an audit record.
type AppendCommand struct {
	AgentName string          `json:"agent_name"`
	SKU       string          `json:"sku"`
	Action    string          `json:"action"`
	Decision  json.RawMessage `json:"decision,omitempty"`
	Reasoning string          `json:"reasoning"`
	Context   json.RawMessage `json:"context,omitempty"`
	ActorID   string          `json:"actor_id"`
	Origin    string          `json:"origin"`
}
