package audit

import (
	"net/url"

	"github.com/rmoura-dev/provisor/pkg/query"
	"github.com/rmoura-dev/provisor/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "audit_records", "a").
	Project("id", "ID").
	Project("agent_name", "AgentName").
	Project("sku", "SKU").
	Project("action", "Action").
	Project("decision", "Decision").
	Project("reasoning", "Reasoning").
	Project("context", "Context").
	Project("actor_id", "ActorID").
	Project("origin", "Origin").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for audit queries. Nil fields
// are ignored; all fields use exact matching.
type Filters struct {
	AgentName *string `json:"agent_name,omitempty"`
	SKU       *string `json:"sku,omitempty"`
	Action    *string `json:"action,omitempty"`
	Origin    *string `json:"origin,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AgentName", f.AgentName).
		WhereEquals("SKU", f.SKU).
		WhereEquals("Action", f.Action).
		WhereEquals("Origin", f.Origin)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("agent_name"); v != "" {
		f.AgentName = &v
	}
	if v := values.Get("sku"); v != "" {
		f.SKU = &v
	}
	if v := values.Get("action"); v != "" {
		f.Action = &v
	}
	if v := values.Get("origin"); v != "" {
		f.Origin = &v
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var rec Record
	var decision, context []byte

	err := s.Scan(
		&rec.ID,
		&rec.AgentName,
		&rec.SKU,
		&rec.Action,
		&decision,
		&rec.Reasoning,
		&context,
		&rec.ActorID,
		&rec.Origin,
		&rec.CreatedAt,
	)
	if err != nil {
		return rec, err
	}

	if len(decision) > 0 {
		rec.Decision = decision
	}
	if len(context) > 0 {
		rec.Context = context
	}

	return rec, nil
}
