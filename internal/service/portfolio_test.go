package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository/memory"
)

func TestGetPortfolioValuesHoldingsAtCatalogPrices(t *testing.T) {
	store := memory.New()
	userID, stockID := seedUserAndStocks(t, store, "1000000")
	trading := NewTradingService(store, testLogger())
	portfolio := NewPortfolioService(store, ledger.TaxConfig{TermThresholdDays: 365}, testLogger())
	ctx := context.Background()

	_, err := trading.ExecuteBuy(ctx, TradeInput{UserID: userID, StockID: stockID, Quantity: 10, Price: dec("3000")})
	require.NoError(t, err)

	valuation, err := portfolio.GetPortfolio(ctx, userID)
	require.NoError(t, err)
	require.Len(t, valuation.Holdings, 1)

	h := valuation.Holdings[0]
	assert.Equal(t, "TCS", h.Symbol)
	assert.Equal(t, stockID, h.StockID)
	assert.Equal(t, "Technology", h.Sector)
	assert.Equal(t, int64(10), h.TotalQuantity)
	assert.Equal(t, "3000", h.AvgBuyPrice.String())
	// Catalog price is 3850.
	assert.Equal(t, "38500", h.MarketValue.String())
	assert.Equal(t, "30000", h.CostBasis.String())
	assert.Equal(t, "8500", h.UnrealizedPL.String())
	assert.Equal(t, "38500", valuation.TotalValue.String())
}

func TestGetPortfolioEmptyLedger(t *testing.T) {
	store := memory.New()
	userID, _ := seedUserAndStocks(t, store, "1000000")
	portfolio := NewPortfolioService(store, ledger.TaxConfig{TermThresholdDays: 365}, testLogger())

	valuation, err := portfolio.GetPortfolio(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, valuation.Holdings)
	assert.True(t, valuation.TotalValue.IsZero())
	assert.True(t, valuation.TotalPLPct.IsZero())
}

func TestGetTransactionsNewestFirst(t *testing.T) {
	store := memory.New()
	userID, stockID := seedUserAndStocks(t, store, "1000000")
	trading := NewTradingService(store, testLogger())
	portfolio := NewPortfolioService(store, ledger.TaxConfig{TermThresholdDays: 365}, testLogger())
	ctx := context.Background()

	_, err := trading.ExecuteBuy(ctx, TradeInput{UserID: userID, StockID: stockID, Quantity: 1, Price: dec("3000")})
	require.NoError(t, err)
	_, err = trading.ExecuteBuy(ctx, TradeInput{UserID: userID, StockID: stockID, Quantity: 2, Price: dec("3100")})
	require.NoError(t, err)

	txns, err := portfolio.GetTransactions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(2), txns[0].Quantity)
	assert.Equal(t, int64(1), txns[1].Quantity)
}

func TestGetTaxReportRoundTrip(t *testing.T) {
	store := memory.New()
	userID, stockID := seedUserAndStocks(t, store, "1000000")
	trading := NewTradingService(store, testLogger())
	portfolio := NewPortfolioService(store, ledger.TaxConfig{
		TermThresholdDays: 365,
		ShortTermRate:     dec("0.15"),
		LongTermRate:      dec("0.10"),
	}, testLogger())
	ctx := context.Background()

	_, err := trading.ExecuteBuy(ctx, TradeInput{UserID: userID, StockID: stockID, Quantity: 10, Price: dec("3000")})
	require.NoError(t, err)
	_, err = trading.ExecuteSell(ctx, TradeInput{UserID: userID, StockID: stockID, Quantity: 10, Price: dec("3200")})
	require.NoError(t, err)

	report, err := portfolio.GetTaxReport(ctx, userID)
	require.NoError(t, err)
	require.Len(t, report.Details, 1)

	d := report.Details[0]
	assert.Equal(t, models.TermShort, d.Term)
	assert.Equal(t, "2000", d.TotalGain.String())
	assert.Equal(t, "2000", report.Summary.ShortTermGain.String())
	assert.Equal(t, "300", report.Summary.TaxLiability.String())
}

func TestGetTaxReportNoSells(t *testing.T) {
	store := memory.New()
	userID, stockID := seedUserAndStocks(t, store, "1000000")
	trading := NewTradingService(store, testLogger())
	portfolio := NewPortfolioService(store, ledger.TaxConfig{TermThresholdDays: 365}, testLogger())
	ctx := context.Background()

	_, err := trading.ExecuteBuy(ctx, TradeInput{UserID: userID, StockID: stockID, Quantity: 10, Price: dec("3000")})
	require.NoError(t, err)

	report, err := portfolio.GetTaxReport(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, report.Details)
	assert.True(t, report.Summary.TaxLiability.IsZero())
}
