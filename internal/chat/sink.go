package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmoura-dev/provisor/internal/audit"
	"github.com/rmoura-dev/provisor/internal/conversations"
	"github.com/rmoura-dev/provisor/internal/jobs"
	"github.com/rmoura-dev/provisor/internal/llm"
	"github.com/rmoura-dev/provisor/internal/pipeline"
	"github.com/rmoura-dev/provisor/pkg/pubsub"
)

const (
	agentName      = "decision-pipeline"
	originPipeline = "pipeline"
	actionAnalysis = "purchase_analysis"

	// Live event kinds, published on the conversation id topic.
	EventJobCompleted = "job.completed"
	EventJobFailed    = "job.failed"
)

// ResultSink delivers terminal job outcomes: it appends the formatted agent
// message to the conversation, writes the audit record, and publishes the
// live notification. The message and audit record are the durable outputs;
// the live event is advisory only.
type ResultSink struct {
	conversations conversations.System
	audit         audit.System
	broker        *pubsub.Broker
	logger        *slog.Logger
}

// NewResultSink creates a ResultSink.
func NewResultSink(
	convs conversations.System,
	auditSys audit.System,
	broker *pubsub.Broker,
	logger *slog.Logger,
) *ResultSink {
	return &ResultSink{
		conversations: convs,
		audit:         auditSys,
		broker:        broker,
		logger:        logger.With("system", "sink"),
	}
}

// JobCompleted delivers a successful analysis back into its conversation.
func (s *ResultSink) JobCompleted(ctx context.Context, job *jobs.Job) {
	var result pipeline.Result
	if err := json.Unmarshal(job.Result, &result); err != nil {
		s.logger.Error("unreadable job result", "id", job.ID, "error", err)
		return
	}

	s.deliver(ctx, job, formatDecision(job.SKU, result.Decision), result.Decision.Rationale,
		mustMarshal(result.Decision), job.Result, EventJobCompleted)
}

// JobFailed delivers a failed analysis back into its conversation.
func (s *ResultSink) JobFailed(ctx context.Context, job *jobs.Job) {
	reason := "unknown error"
	if job.Error != nil {
		reason = *job.Error
	}

	content := fmt.Sprintf("The analysis for %s failed: %s.", job.SKU, reason)
	if llm.IsRateLimited(errors.New(reason)) {
		content = fmt.Sprintf("The analysis for %s was interrupted because the model provider is rate limiting requests. Please try again later.", job.SKU)
	}

	s.deliver(ctx, job, content, reason, nil, nil, EventJobFailed)
}

func (s *ResultSink) deliver(
	ctx context.Context,
	job *jobs.Job,
	content, reasoning string,
	decision, snapshot json.RawMessage,
	kind string,
) {
	metadata, _ := json.Marshal(map[string]any{
		"job_id": job.ID,
		"sku":    job.SKU,
		"status": job.Status,
	})

	if _, err := s.conversations.Append(ctx, job.ConversationID, conversations.AppendCommand{
		Sender:   conversations.SenderAgent,
		Content:  content,
		Metadata: metadata,
	}); err != nil {
		s.logger.Error("failed to append result message",
			"job_id", job.ID, "conversation_id", job.ConversationID, "error", err)
	}

	if _, err := s.audit.Append(ctx, audit.AppendCommand{
		AgentName: agentName,
		SKU:       job.SKU,
		Action:    actionAnalysis,
		Decision:  decision,
		Reasoning: reasoning,
		Context:   snapshot,
		ActorID:   job.ConversationID.String(),
		Origin:    originPipeline,
	}); err != nil {
		s.logger.Error("failed to append audit record", "job_id", job.ID, "error", err)
	}

	s.broker.Publish(job.ConversationID.String(), kind, job)
}

func formatDecision(sku string, d pipeline.Decision) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analysis complete for %s: %s (confidence: %s).",
		sku, strings.ToUpper(strings.ReplaceAll(string(d.Decision), "_", " ")), d.Confidence)

	if d.Decision == pipeline.OutcomeApprove && d.RecommendedSupplier != "" {
		fmt.Fprintf(&sb, "\nRecommended: %d units from %s at %s per unit.",
			d.RecommendedQuantity, d.RecommendedSupplier, d.UnitPrice.StringFixed(2))
	}
	if d.Rationale != "" {
		fmt.Fprintf(&sb, "\nRationale: %s", d.Rationale)
	}

	return sb.String()
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
