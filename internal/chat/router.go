package chat

import "github.com/rmoura-dev/provisor/internal/intent"

// Route is the handling path chosen for a message.
type Route string

// Handling paths.
const (
	RouteDirectAnswer  Route = "direct_answer"
	RouteAsyncAnalysis Route = "async_analysis"
	RouteClarification Route = "clarification"
)

// Decide maps an intent to its handling path. Pure decision table, evaluated
// in priority order: unresolved references always clarify, simple reads
// answer synchronously, purchase and logistics questions go async.
func Decide(it intent.Intent) Route {
	if it.Category == intent.Unknown || !it.Resolved() {
		return RouteClarification
	}

	switch it.Category {
	case intent.StockCheck, intent.PriceCheck, intent.Forecast:
		return RouteDirectAnswer
	case intent.PurchaseDecision, intent.LogisticsAnalysis:
		return RouteAsyncAnalysis
	}

	return RouteClarification
}
