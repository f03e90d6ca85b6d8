package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rmoura-dev/provisor/internal/intent"
	"github.com/rmoura-dev/provisor/internal/llm"
	"github.com/rmoura-dev/provisor/internal/tools"
	"github.com/rmoura-dev/provisor/pkg/formatting"
)

// Runner executes the four-stage analysis for one SKU. All stages are
// read-only against business data; the runner owns no persistence.
type Runner struct {
	caller llm.Caller
	tools  tools.System
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(caller llm.Caller, ts tools.System, cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		caller: caller,
		tools:  ts,
		cfg:    cfg,
		logger: logger.With("system", "pipeline"),
	}
}

// inputs is the read-tool data gathered before the stages run. Any source
// that cannot be read is recorded as a gap rather than failing the job.
type inputs struct {
	inventory *tools.InventoryLevel
	demand    *tools.DemandForecast
	price     *tools.PriceForecast
	offers    []tools.SupplierOffer
	trend     *tools.MarketTrend
	gaps      []string
}

// Model-facing fragments of stage contracts whose remaining fields are
// computed deterministically.
type marketContextResponse struct {
	MarketContext string `json:"market_context"`
}

type riskFlagsResponse struct {
	RiskFlags []string `json:"risk_flags"`
}

// Execute runs the stages strictly in order for the given SKU and requested
// quantity (0 when the request named none). It returns a Result on any
// terminal analysis, including coerced manual-review decisions; an error
// means the job failed without producing a decision.
func (r *Runner) Execute(ctx context.Context, sku string, quantity int) (*Result, error) {
	in := r.gather(ctx, sku)

	var chain []StageResult

	demand, _, err := runStage[DemandOutput](ctx, r, StageDemand,
		demandPrompt(sku, in.inventory, in.demand, in.gaps))
	if err != nil {
		return nil, err
	}
	chain, err = appendStage(chain, StageDemand, demand)
	if err != nil {
		return nil, err
	}

	offers, best := ScoreOffers(in.offers)
	mc, _, err := runStage[marketContextResponse](ctx, r, StageMarket,
		marketPrompt(sku, chain, offers, in.trend, in.gaps))
	if err != nil {
		return nil, err
	}
	market := MarketOutput{Offers: offers, BestOffer: best, MarketContext: mc.MarketContext}
	chain, err = appendStage(chain, StageMarket, market)
	if err != nil {
		return nil, err
	}

	qty := effectiveQuantity(quantity, in, best)
	cost := totalCost(best, qty)
	rf, _, err := runStage[riskFlagsResponse](ctx, r, StageLogistics,
		logisticsPrompt(sku, chain, qty, cost.StringFixed(2), in.gaps))
	if err != nil {
		return nil, err
	}
	flags := rf.RiskFlags
	if flags == nil {
		flags = []string{}
	}
	if best == nil {
		flags = append(flags, "no supplier offers available")
	}
	logistics := LogisticsOutput{
		TotalAcquisitionCost: cost,
		RecommendedOffer:     best,
		RiskFlags:            flags,
	}
	chain, err = appendStage(chain, StageLogistics, logistics)
	if err != nil {
		return nil, err
	}

	d, raw, err := runStage[Decision](ctx, r, StageDecision,
		decisionPrompt(sku, chain, qty, in.gaps))
	if err != nil {
		if !errors.Is(err, formatting.ErrParseFailed) || raw == "" {
			return nil, err
		}
		r.logger.Warn("decision output unparseable, coercing to manual review", "sku", sku)
		d = Decision{
			Decision:   OutcomeManualReview,
			Confidence: intent.ConfidenceLow,
			Rationale:  raw,
		}
	}
	d = r.finalize(d, best, qty, in.gaps)
	chain, err = appendStage(chain, StageDecision, d)
	if err != nil {
		return nil, err
	}

	return &Result{
		SKU:         sku,
		Decision:    d,
		Stages:      chain,
		CompletedAt: time.Now().UTC(),
	}, nil
}

func (r *Runner) gather(ctx context.Context, sku string) inputs {
	var in inputs

	record := func(source string, err error) {
		r.logger.Warn("input read failed", "sku", sku, "source", source, "error", err)
		in.gaps = append(in.gaps, source)
	}

	// The four primary reads are independent; fetch them concurrently. Gaps
	// are recorded afterwards in a fixed order so prompts stay deterministic.
	var invErr, demandErr, priceErr, offersErr error
	var g errgroup.Group
	g.Go(func() error {
		in.inventory, invErr = r.tools.Inventory(ctx, sku)
		return nil
	})
	g.Go(func() error {
		in.demand, demandErr = r.tools.DemandForecast(ctx, sku)
		return nil
	})
	g.Go(func() error {
		in.price, priceErr = r.tools.PriceForecast(ctx, sku, r.cfg.PriceHorizonDays)
		return nil
	})
	g.Go(func() error {
		in.offers, offersErr = r.tools.SupplierOffers(ctx, sku)
		return nil
	})
	g.Wait()

	if invErr != nil {
		record("inventory", invErr)
	}
	if demandErr != nil {
		record("demand forecast", demandErr)
	}
	if priceErr != nil {
		record("price forecast", priceErr)
	}
	if offersErr != nil {
		record("supplier offers", offersErr)
	}

	// The trend read keys off the product name, so it waits for inventory.
	if in.inventory != nil && in.inventory.ProductName != "" {
		var err error
		if in.trend, err = r.tools.MarketTrend(ctx, in.inventory.ProductName); err != nil {
			record("market trend", err)
		}
	}

	return in
}

// runStage calls the model once per attempt with a bounded timeout and parses
// the response against T. Transient failures (call errors, malformed bodies)
// are retried up to cfg.MaxRetries times; rate limiting aborts immediately
// and is never retried against the same limiter. The raw response of the last
// attempt is returned alongside, so callers can coerce on final parse failure.
func runStage[T any](ctx context.Context, r *Runner, stage StageName, prompt string) (T, string, error) {
	var zero T
	var lastRaw string
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, lastRaw, fmt.Errorf("%s stage: %w", stage, ctx.Err())
		}
		if attempt > 0 {
			r.logger.Warn("retrying stage", "stage", stage, "attempt", attempt, "error", lastErr)
		}

		sctx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeoutDuration())
		resp, err := r.caller.Chat(sctx, prompt)
		cancel()

		if err != nil {
			if llm.IsRateLimited(err) {
				return zero, lastRaw, fmt.Errorf("%s stage: %w", stage, llm.ErrRateLimited)
			}
			lastErr = err
			continue
		}

		lastRaw = resp
		out, perr := formatting.Parse[T](resp)
		if perr != nil {
			lastErr = fmt.Errorf("%s stage: %w", stage, perr)
			continue
		}
		return out, resp, nil
	}

	return zero, lastRaw, fmt.Errorf("%s stage failed after %d attempts: %w",
		stage, r.cfg.MaxRetries+1, lastErr)
}

// finalize normalizes the decision: fills omitted fields from the recommended
// offer, notes data gaps in the rationale, and downgrades approvals whose
// confidence sits below the configured floor to manual review.
func (r *Runner) finalize(d Decision, best *Offer, qty int, gaps []string) Decision {
	if d.Decision == "" {
		d.Decision = OutcomeManualReview
	}
	switch d.Confidence {
	case intent.ConfidenceHigh, intent.ConfidenceMedium, intent.ConfidenceLow:
	default:
		d.Confidence = intent.ConfidenceLow
	}

	if d.Decision == OutcomeApprove && best != nil {
		if d.RecommendedSupplier == "" {
			d.RecommendedSupplier = best.Supplier
		}
		if d.UnitPrice.IsZero() {
			d.UnitPrice = best.UnitPrice
		}
		if d.RecommendedQuantity == 0 {
			d.RecommendedQuantity = qty
		}
	}

	if len(gaps) > 0 {
		d.Rationale = strings.TrimSpace(d.Rationale +
			fmt.Sprintf(" (unavailable data sources: %s)", strings.Join(gaps, ", ")))
	}

	if d.Decision == OutcomeApprove && confidenceRank(d.Confidence) < confidenceRank(r.cfg.Floor()) {
		r.logger.Info("approval below confidence floor, downgrading",
			"confidence", d.Confidence, "floor", r.cfg.ConfidenceFloor)
		d.Decision = OutcomeManualReview
		d.Rationale = strings.TrimSpace(d.Rationale + " Routed to manual review: confidence below the approval floor.")
	}

	return d
}

func confidenceRank(c intent.Confidence) int {
	switch c {
	case intent.ConfidenceHigh:
		return 2
	case intent.ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// effectiveQuantity picks the quantity the analysis reasons about: the
// requested amount when given, otherwise the projected shortfall, clamped up
// to the best offer's minimum order quantity.
func effectiveQuantity(requested int, in inputs, best *Offer) int {
	qty := requested
	if qty == 0 && in.demand != nil {
		qty = in.demand.ProjectedDemand
		if in.inventory != nil {
			qty -= in.inventory.Quantity
		}
		if qty < 0 {
			qty = 0
		}
	}
	if best != nil && qty < best.MinOrderQty {
		qty = best.MinOrderQty
	}
	return qty
}

func totalCost(best *Offer, qty int) decimal.Decimal {
	if best == nil {
		return decimal.Zero
	}
	return best.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Add(best.ShippingCost)
}

func appendStage(chain []StageResult, stage StageName, output any) ([]StageResult, error) {
	raw, err := json.Marshal(output)
	if err != nil {
		return chain, fmt.Errorf("marshal %s output: %w", stage, err)
	}
	return append(chain, StageResult{
		Stage:  stage,
		Output: raw,
		At:     time.Now().UTC(),
	}), nil
}
