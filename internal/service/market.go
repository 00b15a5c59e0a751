package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/pricing"
	"github.com/finexus/tradedesk/internal/repository"
)

// MarketService maintains the stock catalog and its quotes.
type MarketService struct {
	repo   repository.StockRepository
	quotes pricing.Source
	logger *logrus.Entry
}

func NewMarketService(repo repository.StockRepository, quotes pricing.Source, logger *logrus.Logger) *MarketService {
	return &MarketService{
		repo:   repo,
		quotes: quotes,
		logger: logger.WithField("component", "market-service"),
	}
}

func (s *MarketService) ListStocks(ctx context.Context) ([]models.Stock, error) {
	return s.repo.ListStocks(ctx)
}

// Seed inserts the default catalog; existing symbols are left untouched.
func (s *MarketService) Seed(ctx context.Context) error {
	return s.repo.SeedStocks(ctx, defaultCatalog())
}

// Refresh pulls a fresh quote for every stock and stores price, day change
// and momentum. A failure on one stock does not stop the sweep.
func (s *MarketService) Refresh(ctx context.Context) (int, error) {
	stocks, err := s.repo.ListStocks(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, stk := range stocks {
		quote, err := s.quotes.NextQuote(ctx, stk.Symbol, stk.CurrentPrice)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", stk.Symbol).Warn("quote fetch failed")
			continue
		}
		// Momentum tracks the day change, matching the scoring the
		// recommendation engine expects.
		if err := s.repo.UpdateQuote(ctx, stk.ID, quote.Price, quote.DayChangePct, quote.DayChangePct); err != nil {
			s.logger.WithError(err).WithField("symbol", stk.Symbol).Warn("quote update failed")
			continue
		}
		updated++
	}
	s.logger.WithField("updated", updated).Debug("market refresh complete")
	return updated, nil
}

func defaultCatalog() []models.Stock {
	price := func(v string) decimal.Decimal {
		d, _ := decimal.NewFromString(v)
		return d
	}
	return []models.Stock{
		{Symbol: "RELIANCE", Name: "Reliance Industries", Sector: "Energy", CurrentPrice: price("2950.00")},
		{Symbol: "TCS", Name: "Tata Consultancy Services", Sector: "Technology", CurrentPrice: price("3850.00")},
		{Symbol: "HDFCBANK", Name: "HDFC Bank", Sector: "Finance", CurrentPrice: price("1650.00")},
		{Symbol: "INFY", Name: "Infosys", Sector: "Technology", CurrentPrice: price("1520.00")},
		{Symbol: "BHARTIARTL", Name: "Bharti Airtel", Sector: "Telecom", CurrentPrice: price("1200.00")},
		{Symbol: "ICICIBANK", Name: "ICICI Bank", Sector: "Finance", CurrentPrice: price("1080.00")},
	}
}
