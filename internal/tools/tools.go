// Package tools provides clients for the external read services the agent
// consults: catalog, inventory, demand and price forecasts, supplier offers,
// and market trend. All reads are stateless request/response; the services
// themselves are outside this system.
package tools

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry used for name resolution.
type Product struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// InventoryLevel is the current stock position for a SKU.
type InventoryLevel struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
}

// DemandForecast is the projected demand for a SKU.
type DemandForecast struct {
	SKU             string `json:"sku"`
	Trend           string `json:"trend"`
	ProjectedDemand int    `json:"projected_demand"`
	HorizonDays     int    `json:"horizon_days"`
}

// PriceForecast is the projected unit price for a SKU over a horizon.
type PriceForecast struct {
	SKU            string          `json:"sku"`
	HorizonDays    int             `json:"horizon_days"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	ProjectedPrice decimal.Decimal `json:"projected_price"`
	Trend          string          `json:"trend"`
}

// SupplierOffer is a purchasable offer for a SKU, including the delivery-cost
// signal (shipping and lead time) the logistics stage consumes.
type SupplierOffer struct {
	Supplier     string          `json:"supplier"`
	SKU          string          `json:"sku"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Reliability  float64         `json:"reliability"`
	MinOrderQty  int             `json:"min_order_qty"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	LeadTimeDays int             `json:"lead_time_days"`
}

// MarketTrend is the market signal for a product name.
type MarketTrend struct {
	ProductName string `json:"product_name"`
	Signal      string `json:"signal"`
	Summary     string `json:"summary"`
}

// System defines the read operations available to the agent.
type System interface {
	Products(ctx context.Context) ([]Product, error)
	Inventory(ctx context.Context, sku string) (*InventoryLevel, error)
	DemandForecast(ctx context.Context, sku string) (*DemandForecast, error)
	PriceForecast(ctx context.Context, sku string, horizonDays int) (*PriceForecast, error)
	SupplierOffers(ctx context.Context, sku string) ([]SupplierOffer, error)
	MarketTrend(ctx context.Context, productName string) (*MarketTrend, error)
}
