package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock is one listed instrument in the catalog.
type Stock struct {
	ID            int64           `json:"stock_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Sector        string          `json:"sector"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	DayChangePct  decimal.Decimal `json:"day_change"`
	MomentumScore decimal.Decimal `json:"momentum_score"`
}

// PriceQuote models the latest quote for a symbol.
type PriceQuote struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	ID           int64           `json:"user_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	CashBalance  decimal.Decimal `json:"cash_balance"`
}

// NewsItem is a single market-news entry served to the dashboard.
type NewsItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Time     string `json:"time"`
	Category string `json:"category"`
}

// Recommendation is the output of portfolio analysis: a suggested action
// with the reasoning behind it.
type Recommendation struct {
	Status         string          `json:"status"`
	Action         string          `json:"action"`
	Sector         string          `json:"sector,omitempty"`
	SuggestedStock string          `json:"suggested_stock,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
}
