package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

type client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New creates a System backed by the configured read-tool HTTP service.
func New(cfg *Config, logger *slog.Logger) System {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.TimeoutDuration()).
		SetRetryCount(cfg.RetryCount)

	return &client{
		http:   httpClient,
		logger: logger.With("system", "tools"),
	}
}

func (c *client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.get(ctx, "/catalog/products", nil, &out); err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	return out, nil
}

func (c *client) Inventory(ctx context.Context, sku string) (*InventoryLevel, error) {
	var out InventoryLevel
	if err := c.get(ctx, fmt.Sprintf("/inventory/%s", sku), nil, &out); err != nil {
		return nil, fmt.Errorf("inventory lookup %s: %w", sku, err)
	}
	return &out, nil
}

func (c *client) DemandForecast(ctx context.Context, sku string) (*DemandForecast, error) {
	var out DemandForecast
	if err := c.get(ctx, fmt.Sprintf("/forecasts/demand/%s", sku), nil, &out); err != nil {
		return nil, fmt.Errorf("demand forecast %s: %w", sku, err)
	}
	return &out, nil
}

func (c *client) PriceForecast(ctx context.Context, sku string, horizonDays int) (*PriceForecast, error) {
	var out PriceForecast
	params := map[string]string{"horizon_days": strconv.Itoa(horizonDays)}
	if err := c.get(ctx, fmt.Sprintf("/forecasts/price/%s", sku), params, &out); err != nil {
		return nil, fmt.Errorf("price forecast %s: %w", sku, err)
	}
	return &out, nil
}

func (c *client) SupplierOffers(ctx context.Context, sku string) ([]SupplierOffer, error) {
	var out []SupplierOffer
	if err := c.get(ctx, fmt.Sprintf("/offers/%s", sku), nil, &out); err != nil {
		return nil, fmt.Errorf("supplier offers %s: %w", sku, err)
	}
	return out, nil
}

func (c *client) MarketTrend(ctx context.Context, productName string) (*MarketTrend, error) {
	var out MarketTrend
	params := map[string]string{"product": productName}
	if err := c.get(ctx, "/market/trend", params, &out); err != nil {
		return nil, fmt.Errorf("market trend %q: %w", productName, err)
	}
	return &out, nil
}

func (c *client) get(ctx context.Context, path string, params map[string]string, out any) error {
	req := c.http.R().SetContext(ctx).SetResult(out)
	if params != nil {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	case resp.IsError():
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	return nil
}
