package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
)

// Store is an in-memory repository.Store used when no database is
// configured. Data resets on restart.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]models.User
	emailIndex map[string]int64
	stocks     map[int64]models.Stock
	symbolIdx  map[string]int64
	txns       []models.Transaction
	nextUserID int64
	nextStkID  int64
	nextTxnID  int64
}

func New() *Store {
	return &Store{
		users:      make(map[int64]models.User),
		emailIndex: make(map[string]int64),
		stocks:     make(map[int64]models.Stock),
		symbolIdx:  make(map[string]int64),
		txns:       []models.Transaction{},
	}
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := s.emailIndex[key]; ok {
		return models.User{}, repository.ErrDuplicateEmail
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = user
	s.emailIndex[key] = user.ID
	return user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *Store) ListStocks(ctx context.Context) ([]models.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Stock, 0, len(s.stocks))
	for _, stk := range s.stocks {
		out = append(out, stk)
	}
	slices.SortFunc(out, func(a, b models.Stock) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return out, nil
}

func (s *Store) StockByID(ctx context.Context, id int64) (*models.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stk, ok := s.stocks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &stk, nil
}

func (s *Store) SeedStocks(ctx context.Context, stocks []models.Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stk := range stocks {
		if _, ok := s.symbolIdx[stk.Symbol]; ok {
			continue
		}
		s.nextStkID++
		stk.ID = s.nextStkID
		s.stocks[stk.ID] = stk
		s.symbolIdx[stk.Symbol] = stk.ID
	}
	return nil
}

func (s *Store) UpdateQuote(ctx context.Context, stockID int64, price, dayChangePct, momentum decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stk, ok := s.stocks[stockID]
	if !ok {
		return repository.ErrNotFound
	}
	stk.CurrentPrice = price
	stk.DayChangePct = dayChangePct
	stk.MomentumScore = momentum
	s.stocks[stockID] = stk
	return nil
}

func (s *Store) ExecuteTrade(ctx context.Context, txn models.Transaction, cashDelta decimal.Decimal) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[txn.UserID]
	if !ok {
		return models.Transaction{}, repository.ErrNotFound
	}
	balance := user.CashBalance.Add(cashDelta)
	if balance.Sign() < 0 {
		return models.Transaction{}, repository.ErrInsufficientFunds
	}
	s.nextTxnID++
	txn.ID = s.nextTxnID
	s.txns = append(s.txns, txn)
	user.CashBalance = balance
	s.users[user.ID] = user
	return txn, nil
}

func (s *Store) ListTransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Transaction{}
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Transaction) int {
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
	return out, nil
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	return []string{"stocks", "transactions", "users"}, nil
}

func (s *Store) TableRows(ctx context.Context, table string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch table {
	case "users":
		rows := make([]map[string]any, 0, len(s.users))
		for _, u := range s.users {
			rows = append(rows, map[string]any{
				"user_id":      u.ID,
				"name":         u.Name,
				"email":        u.Email,
				"cash_balance": u.CashBalance.String(),
			})
		}
		sortRowsByID(rows, "user_id")
		return rows, nil
	case "stocks":
		rows := make([]map[string]any, 0, len(s.stocks))
		for _, stk := range s.stocks {
			rows = append(rows, map[string]any{
				"stock_id":       stk.ID,
				"symbol":         stk.Symbol,
				"name":           stk.Name,
				"sector":         stk.Sector,
				"current_price":  stk.CurrentPrice.String(),
				"day_change":     stk.DayChangePct.String(),
				"momentum_score": stk.MomentumScore.String(),
			})
		}
		sortRowsByID(rows, "stock_id")
		return rows, nil
	case "transactions":
		rows := make([]map[string]any, 0, len(s.txns))
		for _, t := range s.txns {
			rows = append(rows, map[string]any{
				"txn_id":   t.ID,
				"user_id":  t.UserID,
				"stock_id": t.StockID,
				"symbol":   t.Symbol,
				"txn_type": string(t.Type),
				"quantity": t.Quantity,
				"price":    t.Price.String(),
				"txn_date": t.Date,
			})
		}
		sortRowsByID(rows, "txn_id")
		return rows, nil
	}
	return nil, fmt.Errorf("%w: table %s", repository.ErrNotFound, table)
}

func sortRowsByID(rows []map[string]any, key string) {
	slices.SortFunc(rows, func(a, b map[string]any) int {
		ai, _ := a[key].(int64)
		bi, _ := b[key].(int64)
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	})
}
