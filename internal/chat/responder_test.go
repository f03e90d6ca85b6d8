package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rmoura-dev/provisor/internal/chat"
	"github.com/rmoura-dev/provisor/internal/intent"
	"github.com/rmoura-dev/provisor/internal/tools"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name  string
		tools *fakeTools
		it    intent.Intent
		want  []string
	}{
		{
			name:  "stock check",
			tools: healthyTools(),
			it:    intent.Intent{SKU: "SKU_001", Category: intent.StockCheck},
			want: []string{
				"Current stock for SKU_001 (Blue Widget): 5 units, minimum threshold 20.",
				"Stock is below the minimum threshold.",
			},
		},
		{
			name:  "price check",
			tools: healthyTools(),
			it:    intent.Intent{SKU: "SKU_001", Category: intent.PriceCheck},
			want:  []string{"Price outlook for SKU_001: currently 10.00, projected 11.00 over the next 30 days (trend: up)."},
		},
		{
			name:  "forecast",
			tools: healthyTools(),
			it:    intent.Intent{SKU: "SKU_001", Category: intent.Forecast},
			want:  []string{"Demand forecast for SKU_001: rising trend, projected demand of 120 units over the next 30 days."},
		},
		{
			name:  "unknown sku",
			tools: &fakeTools{inventoryErr: tools.ErrNotFound},
			it:    intent.Intent{SKU: "SKU_404", Category: intent.StockCheck},
			want:  []string{"I don't have inventory data for SKU_404."},
		},
		{
			name:  "tool outage",
			tools: &fakeTools{inventoryErr: errors.New("dial tcp: connection refused")},
			it:    intent.Intent{SKU: "SKU_001", Category: intent.StockCheck},
			want:  []string{"The inventory service is unavailable right now. Please try again shortly."},
		},
		{
			name:  "price outage",
			tools: &fakeTools{priceErr: errors.New("503 service unavailable")},
			it:    intent.Intent{SKU: "SKU_001", Category: intent.PriceCheck},
			want:  []string{"The price forecast service is unavailable right now."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chat.NewResponder(tt.tools, 30, testLogger())
			got := r.Respond(context.Background(), tt.it)

			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Errorf("Respond = %q, missing %q", got, fragment)
				}
			}
		})
	}
}
