package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/rmoura-dev/provisor/internal/tools"
)

var two = decimal.NewFromInt(2)

// ScoreOffer computes the selection score for an offer:
//
//	score = price × (2 − reliability)
//
// Lower is better. A cheap offer from an unreliable supplier scores worse
// than a slightly dearer one from a dependable supplier.
func ScoreOffer(price decimal.Decimal, reliability float64) decimal.Decimal {
	return price.Mul(two.Sub(decimal.NewFromFloat(reliability)))
}

// ScoreOffers converts supplier offers into scored pipeline offers and
// returns them alongside the best (lowest-scoring) one. Order of the input
// is preserved; ties keep the earlier offer.
func ScoreOffers(offers []tools.SupplierOffer) ([]Offer, *Offer) {
	if len(offers) == 0 {
		return nil, nil
	}

	scored := make([]Offer, 0, len(offers))
	for _, o := range offers {
		scored = append(scored, Offer{
			Supplier:     o.Supplier,
			UnitPrice:    o.UnitPrice,
			Reliability:  o.Reliability,
			MinOrderQty:  o.MinOrderQty,
			ShippingCost: o.ShippingCost,
			LeadTimeDays: o.LeadTimeDays,
			Score:        ScoreOffer(o.UnitPrice, o.Reliability),
		})
	}

	best := &scored[0]
	for i := 1; i < len(scored); i++ {
		if scored[i].Score.LessThan(best.Score) {
			best = &scored[i]
		}
	}

	b := *best
	return scored, &b
}
