package service

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
)

// PortfolioService derives holdings, valuations and tax reports from the
// transaction ledger. Nothing here is persisted; every call is a full
// replay of the user's ledger snapshot.
type PortfolioService struct {
	store  repository.Store
	taxCfg ledger.TaxConfig
	logger *logrus.Entry
}

func NewPortfolioService(store repository.Store, taxCfg ledger.TaxConfig, logger *logrus.Logger) *PortfolioService {
	return &PortfolioService{
		store:  store,
		taxCfg: taxCfg,
		logger: logger.WithField("component", "portfolio-service"),
	}
}

// GetTransactions returns the user's ledger, newest first.
func (s *PortfolioService) GetTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	txns, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(txns)
	return txns, nil
}

// GetPortfolio aggregates the ledger into holdings and values them at the
// catalog's current prices.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID int64) (*models.PortfolioValuation, error) {
	txns, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	positions, err := ledger.Aggregate(txns)
	if err != nil {
		return nil, err
	}

	stocks, err := s.store.ListStocks(ctx)
	if err != nil {
		return nil, err
	}
	bySymbol := make(map[string]models.Stock, len(stocks))
	prices := make(map[string]decimal.Decimal, len(stocks))
	for _, stk := range stocks {
		bySymbol[stk.Symbol] = stk
		prices[stk.Symbol] = stk.CurrentPrice
	}

	holdings := positions.Holdings()
	for i, h := range holdings {
		if stk, ok := bySymbol[h.Symbol]; ok {
			holdings[i].StockID = stk.ID
			holdings[i].Sector = stk.Sector
		}
	}
	valuation := ledger.Valuate(holdings, prices)
	return &valuation, nil
}

// GetTaxReport builds the realized capital-gains report for the user under
// the configured term threshold and rates.
func (s *PortfolioService) GetTaxReport(ctx context.Context, userID int64) (*models.TaxReport, error) {
	txns, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	report, err := ledger.BuildTaxReport(txns, s.taxCfg)
	if err != nil {
		s.logger.WithError(err).WithField("userId", userID).Error("tax report failed")
		return nil, err
	}
	return report, nil
}
