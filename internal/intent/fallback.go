package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Keyword vocabulary for the deterministic fallback classifier. The deployed
// catalog is bilingual, so Portuguese forms sit alongside English ones.
var fallbackVocabulary = map[Category][]string{
	StockCheck:        {"stock", "inventory", "estoque", "on hand", "disponivel", "disponível"},
	Forecast:          {"forecast", "demand", "previsao", "previsão", "demanda", "projection"},
	PriceCheck:        {"price", "cost", "preco", "preço", "custo", "quote"},
	PurchaseDecision:  {"purchase", "buy", "order", "restock", "comprar", "compra", "reposicao", "reposição"},
	LogisticsAnalysis: {"logistics", "shipping", "delivery", "frete", "logistica", "logística", "entrega"},
}

// Evaluation order matters: purchase wording often mentions stock or price,
// so the action-oriented categories are checked first.
var fallbackOrder = []Category{
	PurchaseDecision,
	LogisticsAnalysis,
	Forecast,
	PriceCheck,
	StockCheck,
}

var (
	skuPattern      = regexp.MustCompile(`(?i)\b(SKU[_-]?[A-Za-z0-9]+)\b`)
	quantityPattern = regexp.MustCompile(`(?i)\b(\d+)\s*(units?|unidades?|pcs)?\b`)
	productPattern  = regexp.MustCompile(`(?i)(?:of|for|do|da|de)\s+([\p{L}\d][\p{L}\d\s-]{2,40})\??$`)
)

// Fallback classifies text deterministically when the model path is
// unavailable. Confidence is fixed at medium; a SKU remembered in the session
// context covers elliptical follow-ups.
func Fallback(text string, sessionCtx map[string]string) Intent {
	it := Intent{
		Category:   Unknown,
		Confidence: ConfidenceMedium,
	}

	lowered := strings.ToLower(text)
	for _, category := range fallbackOrder {
		if containsAny(lowered, fallbackVocabulary[category]) {
			it.Category = category
			break
		}
	}

	// Capture the SKU first and strip it so its digits are not mistaken for
	// a quantity.
	if m := skuPattern.FindStringSubmatch(text); m != nil {
		it.SKU = strings.ToUpper(strings.ReplaceAll(m[1], "-", "_"))
		text = strings.Replace(text, m[1], "", 1)
	} else if sku := sessionCtx[ContextKeySKU]; sku != "" && it.Category != Unknown {
		it.SKU = sku
	}

	if it.SKU == "" {
		if m := productPattern.FindStringSubmatch(strings.TrimSuffix(text, "?")); m != nil {
			it.ProductName = strings.TrimSpace(m[1])
		}
	}

	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			it.Quantity = qty
		}
	}

	if it.Category == Unknown {
		it.Confidence = ConfidenceLow
	}

	return it
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
