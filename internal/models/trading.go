package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType discriminates ledger entries. The ledger is append-only; a
// transaction is never mutated or deleted once recorded.
type TxnType string

const (
	TxnBuy  TxnType = "BUY"
	TxnSell TxnType = "SELL"
)

// Transaction is a single executed trade in a user's ledger.
type Transaction struct {
	ID       int64           `json:"txn_id"`
	UserID   int64           `json:"user_id"`
	StockID  int64           `json:"stock_id"`
	Symbol   string          `json:"symbol"`
	Type     TxnType         `json:"txn_type"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"txn_date"`
}

// Lot is the unsold remnant of a single buy: its remaining quantity plus
// the original price and date, which realized-gain computation needs.
type Lot struct {
	Symbol    string          `json:"symbol"`
	Remaining int64           `json:"remaining_quantity"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	BuyDate   time.Time       `json:"buy_date"`
}

// Holding is the aggregated open position in one instrument, derived from
// open lots. avg_buy_price is the quantity-weighted average over remaining
// buy quantity, zero when the position is flat.
type Holding struct {
	StockID       int64           `json:"stock_id"`
	Symbol        string          `json:"symbol"`
	Sector        string          `json:"sector,omitempty"`
	TotalQuantity int64           `json:"total_quantity"`
	AvgBuyPrice   decimal.Decimal `json:"avg_buy_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
}

// HoldingValuation is a Holding priced against the latest quote.
type HoldingValuation struct {
	Holding
	MarketValue     decimal.Decimal `json:"market_value"`
	CostBasis       decimal.Decimal `json:"cost_basis"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPct decimal.Decimal `json:"unrealized_pl_pct"`
}

// PortfolioValuation aggregates valuations across all holdings.
type PortfolioValuation struct {
	Holdings   []HoldingValuation `json:"holdings"`
	TotalValue decimal.Decimal    `json:"total_value"`
	TotalCost  decimal.Decimal    `json:"total_cost"`
	TotalPL    decimal.Decimal    `json:"total_pl"`
	TotalPLPct decimal.Decimal    `json:"total_pl_pct"`
}
