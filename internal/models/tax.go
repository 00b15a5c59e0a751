package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Term classifies a realized gain by holding period.
type Term string

const (
	TermShort Term = "SHORT"
	TermLong  Term = "LONG"
)

// RealizedGain is one matched (buy lot fragment, sell fragment) pair.
// Produced only by tax-lot matching; recomputed per report, never stored.
type RealizedGain struct {
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	BuyDate   time.Time       `json:"buy_date"`
	SellDate  time.Time       `json:"sell_date"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Term      Term            `json:"term"`
	TotalGain decimal.Decimal `json:"total_gain"`
}

// TaxSummary aggregates realized gains into the two term buckets plus the
// estimated liability under the configured rates.
type TaxSummary struct {
	ShortTermGain decimal.Decimal `json:"short_term_gain"`
	LongTermGain  decimal.Decimal `json:"long_term_gain"`
	TaxLiability  decimal.Decimal `json:"tax_liability"`
}

// TaxReport is the full capital-gains report for one user.
type TaxReport struct {
	Details []RealizedGain `json:"details"`
	Summary TaxSummary     `json:"summary"`
}
