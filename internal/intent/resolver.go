package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rmoura-dev/provisor/internal/tools"
)

// resolve fills in the SKU for intents that only name a product. Matching is
// purely textual, three tiers in order, first match wins:
//
//  1. case-insensitive exact equality
//  2. catalog name contains the query
//  3. every token of the catalog name appears in the query
//
// A successful resolution upgrades confidence to high. No match leaves the
// intent unknown with low confidence.
func (e *Extractor) resolve(ctx context.Context, it Intent) (Intent, error) {
	if it.Resolved() || it.ProductName == "" {
		return it, nil
	}

	products, err := e.catalog.Products(ctx)
	if err != nil {
		return it, fmt.Errorf("catalog read for name resolution: %w", err)
	}

	if match, ok := matchProduct(it.ProductName, products); ok {
		it.SKU = match
		it.Confidence = ConfidenceHigh
		return it, nil
	}

	e.logger.Info("product name unresolved", "product_name", it.ProductName)
	it.Category = Unknown
	it.Confidence = ConfidenceLow
	return it, nil
}

func matchProduct(queryName string, products []tools.Product) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(queryName))

	for _, p := range products {
		if strings.ToLower(p.Name) == query {
			return p.SKU, true
		}
	}

	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			return p.SKU, true
		}
	}

	for _, p := range products {
		if containsAllTokens(query, strings.ToLower(p.Name)) {
			return p.SKU, true
		}
	}

	return "", false
}

func containsAllTokens(query, name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(query, tok) {
			return false
		}
	}
	return true
}
