// Package intent implements entity extraction: turning a free-form chat
// message into a structured intent. The primary path asks the language model
// for a fixed-schema extraction; a deterministic keyword fallback covers
// model failures so extraction never surfaces an error to the caller.
package intent

import (
	"encoding/json"
	"slices"
)

// Category classifies what the message is asking for.
type Category string

// Known intent categories.
const (
	StockCheck        Category = "stock_check"
	PriceCheck        Category = "price_check"
	Forecast          Category = "forecast"
	PurchaseDecision  Category = "purchase_decision"
	LogisticsAnalysis Category = "logistics_analysis"
	Unknown           Category = "unknown"
)

var categories = []Category{
	StockCheck,
	PriceCheck,
	Forecast,
	PurchaseDecision,
	LogisticsAnalysis,
	Unknown,
}

// ParseCategory validates a string as a known category, mapping anything
// unrecognized to Unknown.
func ParseCategory(s string) Category {
	c := Category(s)
	if !slices.Contains(categories, c) {
		return Unknown
	}
	return c
}

// Confidence expresses how certain the extraction is.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// UnmarshalJSON coerces unknown confidence values to low rather than failing,
// since the value arrives from model output.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Confidence(raw) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		*c = Confidence(raw)
	default:
		*c = ConfidenceLow
	}
	return nil
}

// Intent is the structured reading of a single message. It is transient:
// produced per turn, consumed by the router, and discarded.
type Intent struct {
	SKU         string     `json:"sku,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	Category    Category   `json:"intent"`
	Quantity    int        `json:"quantity,omitempty"`
	Confidence  Confidence `json:"confidence"`
}

// Resolved reports whether the intent carries a usable SKU reference.
func (i *Intent) Resolved() bool {
	return i.SKU != ""
}
