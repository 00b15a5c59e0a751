package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/finexus/tradedesk/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Valuate prices holdings against the given quote map and aggregates
// portfolio totals. A symbol missing from prices values at zero. Percent
// P&L on a zero cost basis is defined as zero by policy, not left to
// division semantics.
func Valuate(holdings []models.Holding, prices map[string]decimal.Decimal) models.PortfolioValuation {
	out := models.PortfolioValuation{
		Holdings:   make([]models.HoldingValuation, 0, len(holdings)),
		TotalValue: decimal.Zero,
		TotalCost:  decimal.Zero,
		TotalPL:    decimal.Zero,
		TotalPLPct: decimal.Zero,
	}
	for _, h := range holdings {
		if price, ok := prices[h.Symbol]; ok {
			h.CurrentPrice = price
		}
		qty := decimal.NewFromInt(h.TotalQuantity)
		hv := models.HoldingValuation{
			Holding:     h,
			MarketValue: qty.Mul(h.CurrentPrice),
			CostBasis:   qty.Mul(h.AvgBuyPrice),
		}
		hv.UnrealizedPL = hv.MarketValue.Sub(hv.CostBasis)
		hv.UnrealizedPLPct = percent(hv.UnrealizedPL, hv.CostBasis)
		out.Holdings = append(out.Holdings, hv)
		out.TotalValue = out.TotalValue.Add(hv.MarketValue)
		out.TotalCost = out.TotalCost.Add(hv.CostBasis)
	}
	out.TotalPL = out.TotalValue.Sub(out.TotalCost)
	out.TotalPLPct = percent(out.TotalPL, out.TotalCost)
	return out
}

func percent(pl, cost decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return pl.Div(cost).Mul(hundred)
}
