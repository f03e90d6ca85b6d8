package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rmoura-dev/provisor/internal/conversations"
	"github.com/rmoura-dev/provisor/internal/intent"
	"github.com/rmoura-dev/provisor/internal/jobs"
	"github.com/rmoura-dev/provisor/pkg/pagination"
	"github.com/rmoura-dev/provisor/pkg/pubsub"
)

// historyLimit is the number of recent messages supplied to extraction for
// pronoun resolution.
const historyLimit = 10

const contextKeyIntent = "intent"

type system struct {
	conversations conversations.System
	context       conversations.ContextStore
	extractor     *intent.Extractor
	responder     *Responder
	dispatcher    *jobs.Dispatcher
	broker        *pubsub.Broker
	logger        *slog.Logger
	pagination    pagination.Config
	maxBodySize   int64
}

// New creates the chat System.
func New(
	convs conversations.System,
	ctxStore conversations.ContextStore,
	extractor *intent.Extractor,
	responder *Responder,
	dispatcher *jobs.Dispatcher,
	broker *pubsub.Broker,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodySize int64,
) System {
	return &system{
		conversations: convs,
		context:       ctxStore,
		extractor:     extractor,
		responder:     responder,
		dispatcher:    dispatcher,
		broker:        broker,
		logger:        logger.With("system", "chat"),
		pagination:    pagination,
		maxBodySize:   maxBodySize,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.broker, s.logger, s.maxBodySize)
}

// Submit runs one conversational turn: persist the human message, extract
// and route the intent, and produce the immediate reply. Asynchronous
// analyses return an acknowledgement message alongside the accepted job.
func (s *system) Submit(ctx context.Context, conversationID uuid.UUID, text string) (*Reply, error) {
	if _, err := s.conversations.Find(ctx, conversationID); err != nil {
		return nil, err
	}

	if _, err := s.conversations.Append(ctx, conversationID, conversations.AppendCommand{
		Sender:  conversations.SenderHuman,
		Content: text,
	}); err != nil {
		return nil, err
	}

	history, err := s.conversations.History(ctx, conversationID, historyLimit)
	if err != nil {
		return nil, err
	}

	sessionCtx, err := s.context.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	it, err := s.extractor.Extract(ctx, text, formatHistory(history), sessionCtx)
	if err != nil {
		s.logger.Error("extraction failed", "conversation_id", conversationID, "error", err)
		return s.reply(ctx, conversationID, conversations.SenderSystem,
			"I couldn't look that up right now. Please try again shortly.", nil)
	}

	s.persistContext(ctx, conversationID, it)

	switch Decide(it) {
	case RouteDirectAnswer:
		return s.reply(ctx, conversationID, conversations.SenderAgent,
			s.responder.Respond(ctx, it), intentMetadata(it))

	case RouteAsyncAnalysis:
		return s.dispatch(ctx, conversationID, it)

	default:
		return s.reply(ctx, conversationID, conversations.SenderAgent, clarify(it), nil)
	}
}

func (s *system) dispatch(ctx context.Context, conversationID uuid.UUID, it intent.Intent) (*Reply, error) {
	job, err := s.dispatcher.Submit(ctx, it.SKU, conversationID, it.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrDuplicate):
			return s.reply(ctx, conversationID, conversations.SenderSystem,
				fmt.Sprintf("An analysis for %s is already in progress in this conversation. I'll post the result here when it's ready.", it.SKU),
				nil)
		case errors.Is(err, jobs.ErrQueueFull):
			return s.reply(ctx, conversationID, conversations.SenderSystem,
				"The analysis queue is full right now. Please try again in a moment.", nil)
		default:
			return nil, err
		}
	}

	content := fmt.Sprintf("Analysis started for %s. I'll post the recommendation here when it's ready.", it.SKU)
	metadata, _ := json.Marshal(map[string]any{
		"job_id": job.ID,
		"sku":    job.SKU,
		"intent": it.Category,
	})

	reply, err := s.reply(ctx, conversationID, conversations.SenderAgent, content, metadata)
	if err != nil {
		return nil, err
	}
	reply.Job = job
	return reply, nil
}

func (s *system) reply(
	ctx context.Context,
	conversationID uuid.UUID,
	sender conversations.Sender,
	content string,
	metadata json.RawMessage,
) (*Reply, error) {
	m, err := s.conversations.Append(ctx, conversationID, conversations.AppendCommand{
		Sender:   sender,
		Content:  content,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}
	return &Reply{Message: m}, nil
}

// persistContext records the resolved reference for future-turn pronoun
// resolution. Context writes are best-effort; a failure degrades later
// resolution but never the current turn.
func (s *system) persistContext(ctx context.Context, conversationID uuid.UUID, it intent.Intent) {
	if !it.Resolved() {
		return
	}

	if err := s.context.Set(ctx, conversationID, intent.ContextKeySKU, it.SKU); err != nil {
		s.logger.Warn("context write failed", "conversation_id", conversationID, "error", err)
		return
	}
	if it.Category != intent.Unknown {
		if err := s.context.Set(ctx, conversationID, contextKeyIntent, string(it.Category)); err != nil {
			s.logger.Warn("context write failed", "conversation_id", conversationID, "error", err)
		}
	}
}

func clarify(it intent.Intent) string {
	if it.ProductName != "" && !it.Resolved() {
		return fmt.Sprintf("I couldn't find %q in the catalog. Could you give me the SKU or the exact product name?", it.ProductName)
	}
	if it.Category != intent.Unknown && !it.Resolved() {
		return "Which product do you mean? Please give me the SKU or the product name."
	}
	return "I can check stock, prices, and demand forecasts, or analyze a purchase. What would you like to know, and for which product?"
}

func formatHistory(history []conversations.Message) []string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Sender, m.Content))
	}
	return lines
}

func intentMetadata(it intent.Intent) json.RawMessage {
	metadata, err := json.Marshal(it)
	if err != nil {
		return nil
	}
	return metadata
}
