package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rmoura-dev/provisor/internal/intent"
	"github.com/rmoura-dev/provisor/internal/tools"
)

// Responder answers simple intents synchronously with exactly one narrow
// read. Tool failures are converted into an explanatory reply; a direct
// answer never surfaces an error to the caller.
type Responder struct {
	tools       tools.System
	horizonDays int
	logger      *slog.Logger
}

// NewResponder creates a Responder using the given read tools and price
// forecast horizon.
func NewResponder(ts tools.System, horizonDays int, logger *slog.Logger) *Responder {
	return &Responder{
		tools:       ts,
		horizonDays: horizonDays,
		logger:      logger.With("system", "responder"),
	}
}

// Respond produces the reply text for a direct-answer intent.
func (r *Responder) Respond(ctx context.Context, it intent.Intent) string {
	switch it.Category {
	case intent.StockCheck:
		return r.stock(ctx, it.SKU)
	case intent.PriceCheck:
		return r.price(ctx, it.SKU)
	case intent.Forecast:
		return r.forecast(ctx, it.SKU)
	}

	return "I can answer stock, price, and demand forecast questions directly."
}

func (r *Responder) stock(ctx context.Context, sku string) string {
	inv, err := r.tools.Inventory(ctx, sku)
	if err != nil {
		return r.unavailable("inventory", sku, err)
	}

	reply := fmt.Sprintf("Current stock for %s (%s): %d units, minimum threshold %d.",
		inv.SKU, inv.ProductName, inv.Quantity, inv.MinQuantity)
	if inv.Quantity < inv.MinQuantity {
		reply += " Stock is below the minimum threshold."
	}
	return reply
}

func (r *Responder) price(ctx context.Context, sku string) string {
	fc, err := r.tools.PriceForecast(ctx, sku, r.horizonDays)
	if err != nil {
		return r.unavailable("price forecast", sku, err)
	}

	return fmt.Sprintf("Price outlook for %s: currently %s, projected %s over the next %d days (trend: %s).",
		fc.SKU, fc.CurrentPrice.StringFixed(2), fc.ProjectedPrice.StringFixed(2), fc.HorizonDays, fc.Trend)
}

func (r *Responder) forecast(ctx context.Context, sku string) string {
	fc, err := r.tools.DemandForecast(ctx, sku)
	if err != nil {
		return r.unavailable("demand forecast", sku, err)
	}

	return fmt.Sprintf("Demand forecast for %s: %s trend, projected demand of %d units over the next %d days.",
		fc.SKU, fc.Trend, fc.ProjectedDemand, fc.HorizonDays)
}

func (r *Responder) unavailable(source, sku string, err error) string {
	r.logger.Warn("direct answer tool failed", "source", source, "sku", sku, "error", err)

	if errors.Is(err, tools.ErrNotFound) {
		return fmt.Sprintf("I don't have %s data for %s.", source, sku)
	}
	return fmt.Sprintf("The %s service is unavailable right now. Please try again shortly.", source)
}
