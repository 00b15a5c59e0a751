package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
)

// TradingService executes buy and sell orders against the ledger.
type TradingService struct {
	store  repository.Store
	now    func() time.Time
	logger *logrus.Entry
}

func NewTradingService(store repository.Store, logger *logrus.Logger) *TradingService {
	return &TradingService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.WithField("component", "trading-service"),
	}
}

// TradeInput is the order DTO consumed by ExecuteBuy and ExecuteSell.
type TradeInput struct {
	UserID   int64
	StockID  int64
	Quantity int64
	Price    decimal.Decimal
}

func (in TradeInput) validate() error {
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}
	if in.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return nil
}

// ExecuteBuy debits the order cost from the user's cash balance and appends
// a BUY transaction, atomically. Insufficient cash rejects the order.
func (s *TradingService) ExecuteBuy(ctx context.Context, in TradeInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	stock, err := s.store.StockByID(ctx, in.StockID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: stock_id %d", ErrUnknownStock, in.StockID)
	}
	if err != nil {
		return nil, err
	}

	cost := in.Price.Mul(decimal.NewFromInt(in.Quantity))
	txn, err := s.store.ExecuteTrade(ctx, models.Transaction{
		UserID:   in.UserID,
		StockID:  in.StockID,
		Symbol:   stock.Symbol,
		Type:     models.TxnBuy,
		Quantity: in.Quantity,
		Price:    in.Price,
		Date:     s.now(),
	}, cost.Neg())
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"userId": in.UserID,
		"symbol": stock.Symbol,
		"qty":    in.Quantity,
	}).Info("buy executed")
	return &txn, nil
}

// ExecuteSell verifies the user holds enough open quantity, appends a SELL
// transaction and credits the proceeds. Overselling is rejected before
// anything is recorded.
func (s *TradingService) ExecuteSell(ctx context.Context, in TradeInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	stock, err := s.store.StockByID(ctx, in.StockID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: stock_id %d", ErrUnknownStock, in.StockID)
	}
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListTransactionsByUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	positions, err := ledger.Aggregate(history)
	if err != nil {
		return nil, err
	}
	open := positions.Holding(stock.Symbol).TotalQuantity
	if open < in.Quantity {
		return nil, &ledger.InsufficientHoldingsError{
			Symbol:    stock.Symbol,
			Requested: in.Quantity,
			Available: open,
		}
	}

	proceeds := in.Price.Mul(decimal.NewFromInt(in.Quantity))
	txn, err := s.store.ExecuteTrade(ctx, models.Transaction{
		UserID:   in.UserID,
		StockID:  in.StockID,
		Symbol:   stock.Symbol,
		Type:     models.TxnSell,
		Quantity: in.Quantity,
		Price:    in.Price,
		Date:     s.now(),
	}, proceeds)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"userId": in.UserID,
		"symbol": stock.Symbol,
		"qty":    in.Quantity,
	}).Info("sell executed")
	return &txn, nil
}
