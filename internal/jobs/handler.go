package jobs

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/handlers"
	"github.com/rmoura-dev/provisor/pkg/pagination"
	"github.com/rmoura-dev/provisor/pkg/routes"
)

// Handler provides HTTP endpoints for job status polling. Jobs are created
// only through the chat flow; re-reading a completed job always returns the
// stored result verbatim, never a recomputation.
type Handler struct {
	store      Store
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given store, logger, and pagination config.
func NewHandler(store Store, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		store:      store,
		logger:     logger.With("handler", "jobs"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for job endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/jobs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List returns a paginated list of jobs with optional sku, status, and
// conversation_id query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.store.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single job by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	job, err := h.store.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}
