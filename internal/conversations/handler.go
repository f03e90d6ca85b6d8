package conversations

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/pkg/handlers"
	"github.com/rmoura-dev/provisor/pkg/pagination"
	"github.com/rmoura-dev/provisor/pkg/routes"
)

// Handler provides HTTP endpoints for conversation operations. Message
// submission and the live event stream are handled by the chat module; this
// handler covers session management and transcript reads.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "conversations"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for conversation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/conversations",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/messages", Handler: h.Messages},
		},
	}
}

// Create starts a new conversation and returns it with 201.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.sys.Create(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// List returns a paginated list of conversations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single conversation by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Messages returns a paginated transcript for a conversation, oldest first.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.Messages(r.Context(), id, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
