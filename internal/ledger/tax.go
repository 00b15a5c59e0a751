package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finexus/tradedesk/internal/models"
)

// DefaultTermThresholdDays is the common one-year rule. The exact threshold
// varies by jurisdiction, so it stays a configuration parameter.
const DefaultTermThresholdDays = 365

// TaxConfig parameterizes gain classification and the liability estimate.
// Rates are fractions (0.15 for 15%) applied per bucket; only positive
// bucket totals are taxed, losses within a bucket offset its gains.
type TaxConfig struct {
	TermThresholdDays int
	ShortTermRate     decimal.Decimal
	LongTermRate      decimal.Decimal
}

func (c TaxConfig) threshold() int {
	if c.TermThresholdDays > 0 {
		return c.TermThresholdDays
	}
	return DefaultTermThresholdDays
}

// BuildTaxReport replays the ledger, matching every sell against open buy
// lots FIFO, and emits one RealizedGain per consumed lot fragment. A sell
// that partially consumes a lot splits it; the remainder keeps its original
// buy price and date. A holding period of at least the threshold (in whole
// days, inclusive) classifies the gain as LONG.
func BuildTaxReport(txns []models.Transaction, cfg TaxConfig) (*models.TaxReport, error) {
	details := []models.RealizedGain{}
	_, err := replay(txns, func(lot models.Lot, quantity int64, sell models.Transaction) {
		term := models.TermShort
		if holdingDays(lot.BuyDate, sell.Date) >= cfg.threshold() {
			term = models.TermLong
		}
		details = append(details, models.RealizedGain{
			Symbol:    sell.Symbol,
			Quantity:  quantity,
			BuyDate:   lot.BuyDate,
			SellDate:  sell.Date,
			BuyPrice:  lot.BuyPrice,
			SellPrice: sell.Price,
			Term:      term,
			TotalGain: sell.Price.Sub(lot.BuyPrice).Mul(decimal.NewFromInt(quantity)),
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(details, func(a, b models.RealizedGain) int {
		if a.SellDate.Before(b.SellDate) {
			return -1
		}
		if a.SellDate.After(b.SellDate) {
			return 1
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})

	summary := models.TaxSummary{
		ShortTermGain: decimal.Zero,
		LongTermGain:  decimal.Zero,
	}
	for _, d := range details {
		if d.Term == models.TermShort {
			summary.ShortTermGain = summary.ShortTermGain.Add(d.TotalGain)
		} else {
			summary.LongTermGain = summary.LongTermGain.Add(d.TotalGain)
		}
	}
	summary.TaxLiability = liability(summary.ShortTermGain, cfg.ShortTermRate).
		Add(liability(summary.LongTermGain, cfg.LongTermRate))

	return &models.TaxReport{Details: details, Summary: summary}, nil
}

func liability(gain, rate decimal.Decimal) decimal.Decimal {
	if gain.Sign() <= 0 {
		return decimal.Zero
	}
	return gain.Mul(rate)
}

// holdingDays measures the holding period on calendar dates in UTC, so
// intraday times never flip the term classification.
func holdingDays(buy, sell time.Time) int {
	return int(dateOnly(sell).Sub(dateOnly(buy)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
