package intent_test

import (
	"testing"

	"github.com/rmoura-dev/provisor/internal/intent"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		sessionCtx  map[string]string
		wantSKU     string
		wantProduct string
		wantCat     intent.Category
		wantQty     int
		wantConf    intent.Confidence
	}{
		{
			name:     "portuguese stock check with sku",
			text:     "Qual o estoque do SKU_001?",
			wantSKU:  "SKU_001",
			wantCat:  intent.StockCheck,
			wantConf: intent.ConfidenceMedium,
		},
		{
			name:     "purchase with quantity and hyphenated sku",
			text:     "Comprar 100 unidades do SKU-001",
			wantSKU:  "SKU_001",
			wantCat:  intent.PurchaseDecision,
			wantQty:  100,
			wantConf: intent.ConfidenceMedium,
		},
		{
			name:     "english purchase request",
			text:     "Please order 50 units of SKU_042",
			wantSKU:  "SKU_042",
			wantCat:  intent.PurchaseDecision,
			wantQty:  50,
			wantConf: intent.ConfidenceMedium,
		},
		{
			name:       "elliptical price check resolved from session",
			text:       "Qual o preço?",
			sessionCtx: map[string]string{intent.ContextKeySKU: "SKU_042"},
			wantSKU:    "SKU_042",
			wantCat:    intent.PriceCheck,
			wantConf:   intent.ConfidenceMedium,
		},
		{
			name:        "product name captured when sku absent",
			text:        "check the stock of blue widgets",
			wantProduct: "blue widgets",
			wantCat:     intent.StockCheck,
			wantConf:    intent.ConfidenceMedium,
		},
		{
			name:     "forecast keyword",
			text:     "what is the demand forecast for SKU_007",
			wantSKU:  "SKU_007",
			wantCat:  intent.Forecast,
			wantConf: intent.ConfidenceMedium,
		},
		{
			name:     "logistics keyword",
			text:     "qual o frete do SKU_003?",
			wantSKU:  "SKU_003",
			wantCat:  intent.LogisticsAnalysis,
			wantConf: intent.ConfidenceMedium,
		},
		{
			name:     "purchase outranks stock mention",
			text:     "estoque baixo, comprar SKU_009",
			wantSKU:  "SKU_009",
			wantCat:  intent.PurchaseDecision,
			wantConf: intent.ConfidenceMedium,
		},
		{
			name:       "session sku not applied to unknown intent",
			text:       "bom dia",
			sessionCtx: map[string]string{intent.ContextKeySKU: "SKU_042"},
			wantCat:    intent.Unknown,
			wantConf:   intent.ConfidenceLow,
		},
		{
			name:     "unclassifiable text",
			text:     "hello there",
			wantCat:  intent.Unknown,
			wantConf: intent.ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intent.Fallback(tt.text, tt.sessionCtx)

			if got.SKU != tt.wantSKU {
				t.Errorf("SKU = %q, want %q", got.SKU, tt.wantSKU)
			}
			if got.ProductName != tt.wantProduct {
				t.Errorf("ProductName = %q, want %q", got.ProductName, tt.wantProduct)
			}
			if got.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCat)
			}
			if got.Quantity != tt.wantQty {
				t.Errorf("Quantity = %d, want %d", got.Quantity, tt.wantQty)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %q, want %q", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  intent.Category
	}{
		{input: "stock_check", want: intent.StockCheck},
		{input: "purchase_decision", want: intent.PurchaseDecision},
		{input: "nonsense", want: intent.Unknown},
		{input: "", want: intent.Unknown},
	}

	for _, tt := range tests {
		if got := intent.ParseCategory(tt.input); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
