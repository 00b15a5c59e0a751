// Package ledger holds the computational core of the service: replaying an
// append-only transaction ledger into open lots and holdings, matching sell
// transactions against buy lots FIFO for realized gains, and valuing open
// positions against current prices. Everything here is a pure function of
// its inputs; callers hand in a point-in-time snapshot of the ledger.
package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finexus/tradedesk/internal/models"
)

// matchFunc observes one lot fragment consumed by a sell during replay.
type matchFunc func(lot models.Lot, quantity int64, sell models.Transaction)

// Positions is the result of replaying a ledger: per-symbol queues of open
// lots, oldest first.
type Positions struct {
	lots map[string][]models.Lot
}

// Aggregate replays a user's transactions into open positions. Input order
// does not matter; transactions are sorted by date ascending with id as the
// tie-break so FIFO consumption is deterministic.
func Aggregate(txns []models.Transaction) (*Positions, error) {
	lots, err := replay(txns, nil)
	if err != nil {
		return nil, err
	}
	return &Positions{lots: lots}, nil
}

// Symbols returns all symbols seen in the ledger, sorted.
func (p *Positions) Symbols() []string {
	out := make([]string, 0, len(p.lots))
	for sym := range p.lots {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}

// OpenLots returns the open lots for one symbol, oldest first.
func (p *Positions) OpenLots(symbol string) []models.Lot {
	return slices.Clone(p.lots[symbol])
}

// Holding derives the aggregated position for one symbol. avg_buy_price is
// the quantity-weighted average over remaining buy quantity, zero for a
// flat position.
func (p *Positions) Holding(symbol string) models.Holding {
	var qty int64
	cost := decimal.Zero
	for _, lot := range p.lots[symbol] {
		qty += lot.Remaining
		cost = cost.Add(lot.BuyPrice.Mul(decimal.NewFromInt(lot.Remaining)))
	}
	avg := decimal.Zero
	if qty > 0 {
		avg = cost.Div(decimal.NewFromInt(qty))
	}
	return models.Holding{Symbol: symbol, TotalQuantity: qty, AvgBuyPrice: avg}
}

// Holdings derives holdings for every symbol in the ledger, sorted by
// symbol. Symbols sold back to flat are included with zero quantity.
func (p *Positions) Holdings() []models.Holding {
	symbols := p.Symbols()
	out := make([]models.Holding, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, p.Holding(sym))
	}
	return out
}

func replay(txns []models.Transaction, onMatch matchFunc) (map[string][]models.Lot, error) {
	ordered, err := sortAndValidate(txns)
	if err != nil {
		return nil, err
	}

	open := make(map[string][]models.Lot)
	for _, t := range ordered {
		switch t.Type {
		case models.TxnBuy:
			open[t.Symbol] = append(open[t.Symbol], models.Lot{
				Symbol:    t.Symbol,
				Remaining: t.Quantity,
				BuyPrice:  t.Price,
				BuyDate:   t.Date,
			})
		case models.TxnSell:
			queue := open[t.Symbol]
			var available int64
			for _, lot := range queue {
				available += lot.Remaining
			}
			if available < t.Quantity {
				return nil, &InsufficientHoldingsError{Symbol: t.Symbol, Requested: t.Quantity, Available: available}
			}
			remaining := t.Quantity
			for remaining > 0 {
				lot := &queue[0]
				take := lot.Remaining
				if take > remaining {
					take = remaining
				}
				if onMatch != nil {
					onMatch(*lot, take, t)
				}
				lot.Remaining -= take
				remaining -= take
				if lot.Remaining == 0 {
					queue = queue[1:]
				}
			}
			open[t.Symbol] = queue
		}
	}
	return open, nil
}

func sortAndValidate(txns []models.Transaction) ([]models.Transaction, error) {
	ordered := slices.Clone(txns)
	for _, t := range ordered {
		switch {
		case strings.TrimSpace(t.Symbol) == "":
			return nil, &InvalidTransactionError{TxnID: t.ID, Reason: "missing symbol"}
		case t.Type != models.TxnBuy && t.Type != models.TxnSell:
			return nil, &InvalidTransactionError{TxnID: t.ID, Reason: "unknown txn_type " + string(t.Type)}
		case t.Quantity <= 0:
			return nil, &InvalidTransactionError{TxnID: t.ID, Reason: "quantity must be positive"}
		case t.Price.Sign() <= 0:
			return nil, &InvalidTransactionError{TxnID: t.ID, Reason: "price must be positive"}
		}
	}
	slices.SortStableFunc(ordered, func(a, b models.Transaction) int {
		if a.Date.Before(b.Date) {
			return -1
		}
		if a.Date.After(b.Date) {
			return 1
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return ordered, nil
}
