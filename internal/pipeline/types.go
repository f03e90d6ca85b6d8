// Package pipeline implements the four-stage purchase analysis: Demand,
// Market, Logistics, and Decision. Stages run strictly in order; each stage's
// prompt context is the accumulated JSON outputs of every prior stage, an
// append-only chain that is never mutated or reordered.
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmoura-dev/provisor/internal/intent"
)

// StageName identifies a pipeline stage.
type StageName string

// Pipeline stages, in execution order.
const (
	StageDemand    StageName = "demand"
	StageMarket    StageName = "market"
	StageLogistics StageName = "logistics"
	StageDecision  StageName = "decision"
)

// StageResult records one stage's output in the context chain.
type StageResult struct {
	Stage  StageName       `json:"stage"`
	Output json.RawMessage `json:"output"`
	At     time.Time       `json:"at"`
}

// DemandOutput is the Demand stage contract.
type DemandOutput struct {
	NeedRestock   bool   `json:"need_restock"`
	Justification string `json:"justification"`
}

// Offer is a scored supplier offer as seen by the Market and Logistics stages.
type Offer struct {
	Supplier     string          `json:"supplier"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Reliability  float64         `json:"reliability"`
	MinOrderQty  int             `json:"min_order_qty"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	LeadTimeDays int             `json:"lead_time_days"`
	Score        decimal.Decimal `json:"score"`
}

// MarketOutput is the Market stage contract. Offers and BestOffer are
// computed deterministically; MarketContext is the model's reading of the
// demand picture against current market signals.
type MarketOutput struct {
	Offers        []Offer `json:"offers"`
	BestOffer     *Offer  `json:"best_offer,omitempty"`
	MarketContext string  `json:"market_context"`
}

// LogisticsOutput is the Logistics stage contract.
type LogisticsOutput struct {
	TotalAcquisitionCost decimal.Decimal `json:"total_acquisition_cost"`
	RecommendedOffer     *Offer          `json:"recommended_offer,omitempty"`
	RiskFlags            []string        `json:"risk_flags"`
}

// Outcome is the final recommendation of the Decision stage.
type Outcome string

// Decision outcomes.
const (
	OutcomeApprove      Outcome = "approve"
	OutcomeReject       Outcome = "reject"
	OutcomeManualReview Outcome = "manual_review"
)

// UnmarshalJSON coerces unrecognized outcomes to manual_review so a decision
// is never left empty or carrying an invented value.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Outcome(raw) {
	case OutcomeApprove, OutcomeReject, OutcomeManualReview:
		*o = Outcome(raw)
	default:
		*o = OutcomeManualReview
	}
	return nil
}

// Decision is the Decision stage contract, the final output of a job.
// Immutable once produced.
type Decision struct {
	Decision            Outcome           `json:"decision"`
	Confidence          intent.Confidence `json:"confidence"`
	Rationale           string            `json:"rationale"`
	RecommendedQuantity int               `json:"recommended_quantity"`
	RecommendedSupplier string            `json:"recommended_supplier"`
	UnitPrice           decimal.Decimal   `json:"unit_price"`
}

// Result is the full outcome of one pipeline execution: the final decision
// plus the stage chain that produced it.
type Result struct {
	SKU         string        `json:"sku"`
	Decision    Decision      `json:"decision"`
	Stages      []StageResult `json:"stages"`
	CompletedAt time.Time     `json:"completed_at"`
}
