package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/finexus/tradedesk/internal/models"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail indicates a registration against an email already in use.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInsufficientFunds indicates a trade whose cash debit exceeds the
	// user's balance. The trade is not recorded.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// StockRepository persists the instrument catalog and its latest quotes.
type StockRepository interface {
	ListStocks(ctx context.Context) ([]models.Stock, error)
	StockByID(ctx context.Context, id int64) (*models.Stock, error)
	SeedStocks(ctx context.Context, stocks []models.Stock) error
	UpdateQuote(ctx context.Context, stockID int64, price, dayChangePct, momentum decimal.Decimal) error
}

// TransactionRepository persists the append-only trade ledger.
type TransactionRepository interface {
	// ExecuteTrade appends the transaction and applies cashDelta to the
	// user's balance as one atomic commit. A debit beyond the available
	// balance fails with ErrInsufficientFunds and records nothing.
	ExecuteTrade(ctx context.Context, txn models.Transaction, cashDelta decimal.Decimal) (models.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
}

// AdminRepository exposes raw-table introspection for the admin explorer.
type AdminRepository interface {
	ListTables(ctx context.Context) ([]string, error)
	TableRows(ctx context.Context, table string) ([]map[string]any, error)
}

// Store is the full persistence surface the service layer depends on.
type Store interface {
	UserRepository
	StockRepository
	TransactionRepository
	AdminRepository
}
