package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rmoura-dev/provisor/internal/tools"
)

// writeChain appends the accumulated stage outputs to a prompt. Every stage
// after the first sees the full chain so far, in execution order.
func writeChain(sb *strings.Builder, chain []StageResult) {
	if len(chain) == 0 {
		return
	}
	sb.WriteString("\nPrior analysis stages, in order:\n")
	for _, sr := range chain {
		fmt.Fprintf(sb, "[%s] %s\n", sr.Stage, sr.Output)
	}
}

func writeGaps(sb *strings.Builder, gaps []string) {
	if len(gaps) == 0 {
		return
	}
	sb.WriteString("\nData gaps (sources that could not be read):\n")
	for _, g := range gaps {
		sb.WriteString("- ")
		sb.WriteString(g)
		sb.WriteString("\n")
	}
}

func demandPrompt(sku string, inv *tools.InventoryLevel, fc *tools.DemandForecast, gaps []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are assessing restock need for SKU %s.
Respond with a JSON object and nothing else:

{"need_restock": <bool>, "justification": "<one or two sentences>"}

`, sku)

	if inv != nil {
		fmt.Fprintf(&sb, "Current stock: %d units (minimum threshold %d).\n", inv.Quantity, inv.MinQuantity)
	}
	if fc != nil {
		fmt.Fprintf(&sb, "Demand forecast: trend %q, projected demand %d units over %d days.\n",
			fc.Trend, fc.ProjectedDemand, fc.HorizonDays)
	}
	writeGaps(&sb, gaps)

	return sb.String()
}

func marketPrompt(sku string, chain []StageResult, offers []Offer, trend *tools.MarketTrend, gaps []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are summarizing market conditions for purchasing SKU %s.
Respond with a JSON object and nothing else:

{"market_context": "<two or three sentences on market conditions and supplier landscape>"}
`, sku)

	writeChain(&sb, chain)

	if len(offers) > 0 {
		offersJSON, _ := json.Marshal(offers)
		sb.WriteString("\nSupplier offers (scored; lower score is better):\n")
		sb.Write(offersJSON)
		sb.WriteString("\n")
	} else {
		sb.WriteString("\nNo supplier offers are available.\n")
	}
	if trend != nil {
		fmt.Fprintf(&sb, "Market trend for %q: signal %q. %s\n", trend.ProductName, trend.Signal, trend.Summary)
	}
	writeGaps(&sb, gaps)

	return sb.String()
}

func logisticsPrompt(sku string, chain []StageResult, quantity int, cost string, gaps []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are assessing logistics risk for acquiring %d units of SKU %s.
The computed total acquisition cost (units plus shipping) is %s.
Respond with a JSON object and nothing else:

{"risk_flags": ["<short risk descriptions; empty array when none>"]}
`, quantity, sku, cost)

	writeChain(&sb, chain)
	writeGaps(&sb, gaps)

	return sb.String()
}

func decisionPrompt(sku string, chain []StageResult, quantity int, gaps []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are making the final purchase recommendation for SKU %s (requested quantity: %d).
Respond with a JSON object and nothing else:

{
  "decision": "<one of: approve, reject, manual_review>",
  "confidence": "<one of: high, medium, low>",
  "rationale": "<concise justification>",
  "recommended_quantity": 0,
  "recommended_supplier": "<supplier name or empty string>",
  "unit_price": 0
}

Rules:
- approve only when restock is needed and a viable offer exists.
- reject when restock is clearly unnecessary.
- manual_review when the data is incomplete or contradictory.
- recommended_supplier and unit_price come from the recommended offer when approving.
`, sku, quantity)

	writeChain(&sb, chain)
	writeGaps(&sb, gaps)

	return sb.String()
}
