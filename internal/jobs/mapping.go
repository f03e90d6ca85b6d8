package jobs

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/query"
	"github.com/rmoura-dev/provisor/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analysis_jobs", "j").
	Project("id", "ID").
	Project("sku", "SKU").
	Project("conversation_id", "ConversationID").
	Project("status", "Status").
	Project("quantity", "Quantity").
	Project("result", "Result").
	Project("error", "Error").
	Project("created_at", "CreatedAt").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const jobColumns = `id, sku, conversation_id, status, quantity, result, error,
				  created_at, started_at, completed_at`

// Filters contains optional filtering criteria for job queries. Nil fields
// are ignored; all fields use exact matching.
type Filters struct {
	SKU            *string    `json:"sku,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SKU", f.SKU).
		WhereEquals("Status", f.Status).
		WhereEquals("ConversationID", f.ConversationID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("sku"); v != "" {
		f.SKU = &v
	}
	if v := values.Get("status"); v != "" {
		if s := Status(v); s.Valid() {
			f.Status = &s
		}
	}
	if v := values.Get("conversation_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ConversationID = &id
		}
	}

	return f
}

func scanJob(s repository.Scanner) (Job, error) {
	var j Job
	var result []byte

	err := s.Scan(
		&j.ID,
		&j.SKU,
		&j.ConversationID,
		&j.Status,
		&j.Quantity,
		&result,
		&j.Error,
		&j.CreatedAt,
		&j.StartedAt,
		&j.CompletedAt,
	)
	if err != nil {
		return j, err
	}

	if len(result) > 0 {
		j.Result = result
	}

	return j, nil
}
