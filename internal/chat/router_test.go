package chat_test

import (
	"testing"

	"github.com/rmoura-dev/provisor/internal/chat"
	"github.com/rmoura-dev/provisor/internal/intent"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		it   intent.Intent
		want chat.Route
	}{
		{
			name: "resolved stock check answers directly",
			it:   intent.Intent{SKU: "SKU_001", Category: intent.StockCheck, Confidence: intent.ConfidenceHigh},
			want: chat.RouteDirectAnswer,
		},
		{
			name: "resolved price check answers directly",
			it:   intent.Intent{SKU: "SKU_001", Category: intent.PriceCheck, Confidence: intent.ConfidenceMedium},
			want: chat.RouteDirectAnswer,
		},
		{
			name: "resolved forecast answers directly",
			it:   intent.Intent{SKU: "SKU_001", Category: intent.Forecast, Confidence: intent.ConfidenceHigh},
			want: chat.RouteDirectAnswer,
		},
		{
			name: "purchase decision goes async",
			it:   intent.Intent{SKU: "SKU_001", Category: intent.PurchaseDecision, Quantity: 100, Confidence: intent.ConfidenceHigh},
			want: chat.RouteAsyncAnalysis,
		},
		{
			name: "logistics analysis goes async",
			it:   intent.Intent{SKU: "SKU_001", Category: intent.LogisticsAnalysis, Confidence: intent.ConfidenceMedium},
			want: chat.RouteAsyncAnalysis,
		},
		{
			name: "unknown intent clarifies",
			it:   intent.Intent{SKU: "SKU_001", Category: intent.Unknown, Confidence: intent.ConfidenceLow},
			want: chat.RouteClarification,
		},
		{
			name: "unresolved stock check clarifies",
			it:   intent.Intent{Category: intent.StockCheck, Confidence: intent.ConfidenceHigh},
			want: chat.RouteClarification,
		},
		{
			name: "unresolved purchase clarifies",
			it:   intent.Intent{ProductName: "green gizmo", Category: intent.PurchaseDecision, Confidence: intent.ConfidenceMedium},
			want: chat.RouteClarification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chat.Decide(tt.it); got != tt.want {
				t.Errorf("Decide(%+v) = %q, want %q", tt.it, got, tt.want)
			}
		})
	}
}
