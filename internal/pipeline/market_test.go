package pipeline_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rmoura-dev/provisor/internal/pipeline"
	"github.com/rmoura-dev/provisor/internal/tools"
)

func TestScoreOffer(t *testing.T) {
	tests := []struct {
		name        string
		price       string
		reliability float64
		want        string
	}{
		{name: "reliable supplier", price: "10.00", reliability: 0.95, want: "10.5"},
		{name: "unreliable supplier", price: "9.00", reliability: 0.5, want: "13.5"},
		{name: "perfect reliability equals price", price: "12.00", reliability: 1.0, want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			got := pipeline.ScoreOffer(price, tt.reliability)

			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ScoreOffer(%s, %v) = %s, want %s", tt.price, tt.reliability, got, tt.want)
			}
		})
	}
}

func TestScoreOffers(t *testing.T) {
	t.Run("reliability beats raw price", func(t *testing.T) {
		offers := []tools.SupplierOffer{
			{Supplier: "acme", UnitPrice: decimal.RequireFromString("10.00"), Reliability: 0.95},
			{Supplier: "cutrate", UnitPrice: decimal.RequireFromString("9.00"), Reliability: 0.5},
		}

		scored, best := pipeline.ScoreOffers(offers)

		if len(scored) != 2 {
			t.Fatalf("scored length = %d, want 2", len(scored))
		}
		if best == nil {
			t.Fatal("best = nil, want acme")
		}
		if best.Supplier != "acme" {
			t.Errorf("best.Supplier = %q, want acme", best.Supplier)
		}
	})

	t.Run("tie keeps earlier offer", func(t *testing.T) {
		offers := []tools.SupplierOffer{
			{Supplier: "first", UnitPrice: decimal.RequireFromString("10.00"), Reliability: 0.9},
			{Supplier: "second", UnitPrice: decimal.RequireFromString("10.00"), Reliability: 0.9},
		}

		_, best := pipeline.ScoreOffers(offers)

		if best.Supplier != "first" {
			t.Errorf("best.Supplier = %q, want first", best.Supplier)
		}
	})

	t.Run("input order preserved", func(t *testing.T) {
		offers := []tools.SupplierOffer{
			{Supplier: "b", UnitPrice: decimal.RequireFromString("20.00"), Reliability: 0.8},
			{Supplier: "a", UnitPrice: decimal.RequireFromString("10.00"), Reliability: 0.8},
		}

		scored, _ := pipeline.ScoreOffers(offers)

		if scored[0].Supplier != "b" || scored[1].Supplier != "a" {
			t.Errorf("scored order = [%s %s], want [b a]", scored[0].Supplier, scored[1].Supplier)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		scored, best := pipeline.ScoreOffers(nil)
		if scored != nil {
			t.Errorf("scored = %v, want nil", scored)
		}
		if best != nil {
			t.Errorf("best = %v, want nil", best)
		}
	})
}
