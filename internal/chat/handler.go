package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/internal/conversations"
	"github.com/rmoura-dev/provisor/internal/jobs"
	"github.com/rmoura-dev/provisor/pkg/handlers"
	"github.com/rmoura-dev/provisor/pkg/pubsub"
	"github.com/rmoura-dev/provisor/pkg/routes"
)

// heartbeatInterval keeps idle event streams alive through proxies.
const heartbeatInterval = 15 * time.Second

// Handler provides the message submission endpoint and the live event stream.
type Handler struct {
	sys         System
	broker      *pubsub.Broker
	logger      *slog.Logger
	maxBodySize int64
}

// SubmitRequest is the JSON body for message submission.
type SubmitRequest struct {
	Content string `json:"content"`
}

// NewHandler creates a Handler with the given system, broker, and body limit.
func NewHandler(sys System, broker *pubsub.Broker, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		sys:         sys,
		broker:      broker,
		logger:      logger.With("handler", "chat"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for chat endpoints. The group
// shares the /conversations prefix with the conversations handler; patterns
// do not overlap.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/conversations",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/messages", Handler: h.Submit},
			{Method: "GET", Pattern: "/{id}/events", Handler: h.Events},
		},
	}
}

// Submit accepts a free-form message and returns the immediate reply: a
// direct answer, a clarifying question, or an analysis acknowledgement with
// the accepted job. Duplicate analysis requests return the rejection message
// with 200; the body limit guards the request framing, not message length.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, conversations.ErrNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.Content == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, conversations.ErrEmptyContent)
		return
	}

	reply, err := h.sys.Submit(r.Context(), id, req.Content)
	if err != nil {
		handlers.RespondError(w, h.logger, mapSubmitStatus(err), err)
		return
	}

	status := http.StatusOK
	if reply.Job != nil {
		status = http.StatusAccepted
	}
	handlers.RespondJSON(w, status, reply)
}

// Events streams live job notifications for a conversation as server-sent
// events. Delivery is at-most-once with no replay: the durable record is the
// conversation transcript, reread on reconnect.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, conversations.ErrNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.broker.Subscribe(id.String())
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	h.logger.Debug("event stream opened", "conversation_id", id)

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("event stream closed", "conversation_id", id)
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				h.logger.Error("unserializable event", "kind", event.Kind, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
			flusher.Flush()
		}
	}
}

func mapSubmitStatus(err error) int {
	if errors.Is(err, conversations.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, jobs.ErrDuplicate) {
		return http.StatusConflict
	}
	return conversations.MapHTTPStatus(err)
}
