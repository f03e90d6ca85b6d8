package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rmoura-dev/provisor/internal/intent"
	"github.com/rmoura-dev/provisor/internal/llm"
	"github.com/rmoura-dev/provisor/internal/pipeline"
	"github.com/rmoura-dev/provisor/internal/tools"
)

type fakeTools struct {
	inventory *tools.InventoryLevel
	demand    *tools.DemandForecast
	price     *tools.PriceForecast
	offers    []tools.SupplierOffer
	trend     *tools.MarketTrend

	inventoryErr error
	offersErr    error
}

func (f *fakeTools) Products(ctx context.Context) ([]tools.Product, error) {
	return nil, nil
}

func (f *fakeTools) Inventory(ctx context.Context, sku string) (*tools.InventoryLevel, error) {
	if f.inventoryErr != nil {
		return nil, f.inventoryErr
	}
	return f.inventory, nil
}

func (f *fakeTools) DemandForecast(ctx context.Context, sku string) (*tools.DemandForecast, error) {
	return f.demand, nil
}

func (f *fakeTools) PriceForecast(ctx context.Context, sku string, horizonDays int) (*tools.PriceForecast, error) {
	return f.price, nil
}

func (f *fakeTools) SupplierOffers(ctx context.Context, sku string) ([]tools.SupplierOffer, error) {
	if f.offersErr != nil {
		return nil, f.offersErr
	}
	return f.offers, nil
}

func (f *fakeTools) MarketTrend(ctx context.Context, productName string) (*tools.MarketTrend, error) {
	return f.trend, nil
}

func healthyTools() *fakeTools {
	return &fakeTools{
		inventory: &tools.InventoryLevel{
			SKU:         "SKU_001",
			ProductName: "Blue Widget",
			Quantity:    5,
			MinQuantity: 20,
		},
		demand: &tools.DemandForecast{
			SKU:             "SKU_001",
			Trend:           "rising",
			ProjectedDemand: 120,
			HorizonDays:     30,
		},
		price: &tools.PriceForecast{
			SKU:            "SKU_001",
			HorizonDays:    30,
			CurrentPrice:   decimal.RequireFromString("10.00"),
			ProjectedPrice: decimal.RequireFromString("11.00"),
			Trend:          "up",
		},
		offers: []tools.SupplierOffer{
			{
				Supplier:     "acme",
				SKU:          "SKU_001",
				UnitPrice:    decimal.RequireFromString("10.00"),
				Reliability:  0.95,
				MinOrderQty:  50,
				ShippingCost: decimal.RequireFromString("25.00"),
				LeadTimeDays: 7,
			},
			{
				Supplier:     "cutrate",
				SKU:          "SKU_001",
				UnitPrice:    decimal.RequireFromString("9.00"),
				Reliability:  0.5,
				MinOrderQty:  10,
				ShippingCost: decimal.RequireFromString("15.00"),
				LeadTimeDays: 21,
			},
		},
		trend: &tools.MarketTrend{
			ProductName: "Blue Widget",
			Signal:      "tightening",
			Summary:     "supply constrained",
		},
	}
}

func testConfig() pipeline.Config {
	return pipeline.Config{
		StageTimeout:     "5s",
		MaxRetries:       2,
		ConfidenceFloor:  "medium",
		PriceHorizonDays: 30,
	}
}

func newRunner(caller llm.Caller, ts tools.System) *pipeline.Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.NewRunner(caller, ts, testConfig(), logger)
}

func happyScript() *llm.ScriptCaller {
	return llm.NewScript(
		llm.ScriptStep{Response: `{"need_restock":true,"justification":"stock well below minimum"}`},
		llm.ScriptStep{Response: `{"market_context":"prices trending up, supply constrained"}`},
		llm.ScriptStep{Response: `{"risk_flags":["price trending up"]}`},
		llm.ScriptStep{Response: `{"decision":"approve","confidence":"high","rationale":"restock justified"}`},
	)
}

func TestExecuteRunsStagesInOrder(t *testing.T) {
	caller := happyScript()
	runner := newRunner(caller, healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if caller.Calls() != 4 {
		t.Errorf("Calls = %d, want 4", caller.Calls())
	}

	wantStages := []pipeline.StageName{
		pipeline.StageDemand,
		pipeline.StageMarket,
		pipeline.StageLogistics,
		pipeline.StageDecision,
	}
	if len(result.Stages) != len(wantStages) {
		t.Fatalf("Stages length = %d, want %d", len(result.Stages), len(wantStages))
	}
	for i, want := range wantStages {
		if result.Stages[i].Stage != want {
			t.Errorf("Stages[%d] = %q, want %q", i, result.Stages[i].Stage, want)
		}
	}

	// Each later prompt carries the chain of prior stage outputs.
	decisionPrompt := caller.Prompts[3]
	for _, fragment := range []string{"[demand]", "[market]", "[logistics]", "stock well below minimum"} {
		if !strings.Contains(decisionPrompt, fragment) {
			t.Errorf("decision prompt missing %q", fragment)
		}
	}
}

func TestExecuteFillsDecisionFromBestOffer(t *testing.T) {
	runner := newRunner(happyScript(), healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	d := result.Decision
	if d.Decision != pipeline.OutcomeApprove {
		t.Errorf("Decision = %q, want approve", d.Decision)
	}
	if d.RecommendedSupplier != "acme" {
		t.Errorf("RecommendedSupplier = %q, want acme", d.RecommendedSupplier)
	}
	// Projected demand 120 minus 5 in stock.
	if d.RecommendedQuantity != 115 {
		t.Errorf("RecommendedQuantity = %d, want 115", d.RecommendedQuantity)
	}
	if !d.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("UnitPrice = %s, want 10.00", d.UnitPrice)
	}
}

func TestExecuteRequestedQuantityWins(t *testing.T) {
	runner := newRunner(happyScript(), healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 200)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if got := result.Decision.RecommendedQuantity; got != 200 {
		t.Errorf("RecommendedQuantity = %d, want 200", got)
	}
}

func TestExecuteRetriesTransientFailure(t *testing.T) {
	caller := llm.NewScript(
		llm.ScriptStep{Err: errors.New("connection reset")},
		llm.ScriptStep{Response: `{"need_restock":true,"justification":"below minimum"}`},
		llm.ScriptStep{Response: `{"market_context":"stable"}`},
		llm.ScriptStep{Response: `{"risk_flags":[]}`},
		llm.ScriptStep{Response: `{"decision":"approve","confidence":"high","rationale":"ok"}`},
	)
	runner := newRunner(caller, healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if caller.Calls() != 5 {
		t.Errorf("Calls = %d, want 5 (one retry)", caller.Calls())
	}
	if result.Decision.Decision != pipeline.OutcomeApprove {
		t.Errorf("Decision = %q, want approve", result.Decision.Decision)
	}
}

func TestExecuteRateLimitAbortsWithoutRetry(t *testing.T) {
	caller := llm.NewScript(llm.ScriptStep{Err: errors.New("upstream returned 429")})
	runner := newRunner(caller, healthyTools())

	_, err := runner.Execute(context.Background(), "SKU_001", 0)
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if caller.Calls() != 1 {
		t.Errorf("Calls = %d, want 1 (no retry on rate limit)", caller.Calls())
	}
}

func TestExecuteExhaustedRetriesFailJob(t *testing.T) {
	caller := llm.NewScript(llm.ScriptStep{Err: errors.New("connection reset")})
	runner := newRunner(caller, healthyTools())

	_, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err == nil {
		t.Fatal("Execute returned nil, want error after exhausted retries")
	}
	if calls := caller.Calls(); calls != 3 {
		t.Errorf("Calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestExecuteCoercesUnparseableDecision(t *testing.T) {
	caller := llm.NewScript(
		llm.ScriptStep{Response: `{"need_restock":true,"justification":"below minimum"}`},
		llm.ScriptStep{Response: `{"market_context":"stable"}`},
		llm.ScriptStep{Response: `{"risk_flags":[]}`},
		llm.ScriptStep{Response: `I think you should probably approve this order.`},
	)
	runner := newRunner(caller, healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	d := result.Decision
	if d.Decision != pipeline.OutcomeManualReview {
		t.Errorf("Decision = %q, want manual_review", d.Decision)
	}
	if d.Confidence != intent.ConfidenceLow {
		t.Errorf("Confidence = %q, want low", d.Confidence)
	}
	if !strings.Contains(d.Rationale, "I think you should probably approve") {
		t.Errorf("Rationale = %q, want raw model text preserved", d.Rationale)
	}
}

func TestExecuteDowngradesLowConfidenceApproval(t *testing.T) {
	caller := llm.NewScript(
		llm.ScriptStep{Response: `{"need_restock":true,"justification":"below minimum"}`},
		llm.ScriptStep{Response: `{"market_context":"stable"}`},
		llm.ScriptStep{Response: `{"risk_flags":[]}`},
		llm.ScriptStep{Response: `{"decision":"approve","confidence":"low","rationale":"weak signal"}`},
	)
	runner := newRunner(caller, healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	d := result.Decision
	if d.Decision != pipeline.OutcomeManualReview {
		t.Errorf("Decision = %q, want manual_review (below confidence floor)", d.Decision)
	}
	if !strings.Contains(d.Rationale, "confidence below the approval floor") {
		t.Errorf("Rationale = %q, want downgrade note", d.Rationale)
	}
}

func TestExecuteRecordsDataGaps(t *testing.T) {
	ts := healthyTools()
	ts.inventoryErr = errors.New("inventory service down")
	runner := newRunner(happyScript(), ts)

	result, err := runner.Execute(context.Background(), "SKU_001", 100)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !strings.Contains(result.Decision.Rationale, "unavailable data sources: inventory") {
		t.Errorf("Rationale = %q, want data gap note", result.Decision.Rationale)
	}
}

func TestExecuteNoOffersFlagsRisk(t *testing.T) {
	ts := healthyTools()
	ts.offers = nil
	caller := llm.NewScript(
		llm.ScriptStep{Response: `{"need_restock":true,"justification":"below minimum"}`},
		llm.ScriptStep{Response: `{"market_context":"no offers seen"}`},
		llm.ScriptStep{Response: `{"risk_flags":[]}`},
		llm.ScriptStep{Response: `{"decision":"manual_review","confidence":"low","rationale":"no suppliers"}`},
	)
	runner := newRunner(caller, ts)

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	var logistics pipeline.LogisticsOutput
	if uerr := unmarshalStage(result, pipeline.StageLogistics, &logistics); uerr != nil {
		t.Fatalf("logistics stage: %v", uerr)
	}
	found := false
	for _, flag := range logistics.RiskFlags {
		if flag == "no supplier offers available" {
			found = true
		}
	}
	if !found {
		t.Errorf("RiskFlags = %v, want no-offers flag", logistics.RiskFlags)
	}
	if !logistics.TotalAcquisitionCost.IsZero() {
		t.Errorf("TotalAcquisitionCost = %s, want 0", logistics.TotalAcquisitionCost)
	}
}

func TestExecuteUnknownOutcomeCoerced(t *testing.T) {
	caller := llm.NewScript(
		llm.ScriptStep{Response: `{"need_restock":false,"justification":"plenty of stock"}`},
		llm.ScriptStep{Response: `{"market_context":"stable"}`},
		llm.ScriptStep{Response: `{"risk_flags":[]}`},
		llm.ScriptStep{Response: `{"decision":"defer","confidence":"medium","rationale":"unclear"}`},
	)
	runner := newRunner(caller, healthyTools())

	result, err := runner.Execute(context.Background(), "SKU_001", 0)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Decision.Decision != pipeline.OutcomeManualReview {
		t.Errorf("Decision = %q, want manual_review for unknown outcome", result.Decision.Decision)
	}
}

func unmarshalStage(result *pipeline.Result, stage pipeline.StageName, out any) error {
	for _, sr := range result.Stages {
		if sr.Stage == stage {
			return json.Unmarshal(sr.Output, out)
		}
	}
	return errors.New("stage not found")
}
