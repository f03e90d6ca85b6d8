package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmoura-dev/provisor/internal/llm"
	"github.com/rmoura-dev/provisor/internal/tools"
	"github.com/rmoura-dev/provisor/pkg/formatting"
)

// ContextKeySKU is the session-context key holding the last resolved SKU,
// used to resolve pronouns and ellipsis on later turns.
const ContextKeySKU = "sku"

// CatalogSource supplies the product list for name resolution.
type CatalogSource interface {
	Products(ctx context.Context) ([]tools.Product, error)
}

// Extractor turns message text into a structured Intent.
type Extractor struct {
	caller  llm.Caller
	catalog CatalogSource
	logger  *slog.Logger
}

// NewExtractor creates an Extractor using the given model caller and catalog.
func NewExtractor(caller llm.Caller, catalog CatalogSource, logger *slog.Logger) *Extractor {
	return &Extractor{
		caller:  caller,
		catalog: catalog,
		logger:  logger.With("system", "intent"),
	}
}

type extractionResponse struct {
	SKU         string     `json:"sku"`
	ProductName string     `json:"product_name"`
	Intent      string     `json:"intent"`
	Quantity    int        `json:"quantity"`
	Confidence  Confidence `json:"confidence"`
}

// Extract produces an Intent from text, using recent history and the
// session-scoped context map to resolve references. Model failures are
// recovered via the deterministic fallback and never returned to the caller;
// only a failed catalog read can surface an error.
func (e *Extractor) Extract(
	ctx context.Context,
	text string,
	history []string,
	sessionCtx map[string]string,
) (Intent, error) {
	it, err := e.extractLLM(ctx, text, history, sessionCtx)
	if err != nil {
		e.logger.Warn("model extraction failed, using fallback", "error", err)
		it = Fallback(text, sessionCtx)
	}

	return e.resolve(ctx, it)
}

func (e *Extractor) extractLLM(
	ctx context.Context,
	text string,
	history []string,
	sessionCtx map[string]string,
) (Intent, error) {
	resp, err := e.caller.Chat(ctx, extractionPrompt(text, history, sessionCtx))
	if err != nil {
		return Intent{}, err
	}

	parsed, err := formatting.Parse[extractionResponse](resp)
	if err != nil {
		return Intent{}, fmt.Errorf("malformed extraction: %w", err)
	}

	it := Intent{
		SKU:         strings.TrimSpace(parsed.SKU),
		ProductName: strings.TrimSpace(parsed.ProductName),
		Category:    ParseCategory(parsed.Intent),
		Quantity:    parsed.Quantity,
		Confidence:  parsed.Confidence,
	}
	if it.Confidence == "" {
		it.Confidence = ConfidenceLow
	}

	return it, nil
}

func extractionPrompt(text string, history []string, sessionCtx map[string]string) string {
	var sb strings.Builder

	sb.WriteString(`Extract the user's procurement intent from the message below.
Respond with a JSON object matching this exact structure:

{
  "sku": "<SKU code or empty string>",
  "product_name": "<product name or empty string>",
  "intent": "<one of: stock_check, price_check, forecast, purchase_decision, logistics_analysis, unknown>",
  "quantity": 0,
  "confidence": "<one of: high, medium, low>"
}

Rules:
- Resolve pronouns and elliptical references ("it", "that one", "e o preço?")
  against the conversation history and session context.
- Leave sku empty unless the message or context names one explicitly.
- quantity is the requested purchase quantity, 0 when absent.
- Always respond with valid JSON and nothing else.`)

	if len(history) > 0 {
		sb.WriteString("\n\nRecent conversation:\n")
		for _, h := range history {
			sb.WriteString(h)
			sb.WriteString("\n")
		}
	}

	if len(sessionCtx) > 0 {
		ctxJSON, _ := json.Marshal(sessionCtx)
		sb.WriteString("\nSession context: ")
		sb.Write(ctxJSON)
	}

	sb.WriteString("\n\nMessage: ")
	sb.WriteString(text)

	return sb.String()
}
