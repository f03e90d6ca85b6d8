// Package jobs implements asynchronous analysis job dispatch: job state
// backed by the database, a worker pool executing the analysis out-of-band,
// and a reaper that forces stale jobs to a terminal state. At most one job
// with status pending or running may exist per (sku, conversation) pair,
// enforced atomically by the database.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an analysis job.
type Status string

// Job statuses. A job becomes terminal (completed or failed) exactly once.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one asynchronous analysis request. Result holds the full pipeline
// result for completed jobs; Error holds the failure message for failed ones.
type Job struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	Status         Status          `json:"status"`
	Quantity       int             `json:"quantity"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *string         `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}
