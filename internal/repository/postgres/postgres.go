package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
)

// Store implements repository.Store backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the backing tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(120) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			cash_balance DECIMAL(15,2) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS stocks (
			stock_id BIGSERIAL PRIMARY KEY,
			symbol VARCHAR(10) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL DEFAULT '',
			sector VARCHAR(50) NOT NULL DEFAULT '',
			current_price DECIMAL(10,2) NOT NULL,
			day_change DECIMAL(10,4) NOT NULL DEFAULT 0,
			momentum_score DECIMAL(10,4) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			txn_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			stock_id BIGINT NOT NULL REFERENCES stocks(stock_id),
			txn_type VARCHAR(10) NOT NULL,
			quantity BIGINT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			txn_date TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (name, email, password_hash, cash_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`
	err := s.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.CashBalance).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, repository.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT user_id, name, email, password_hash, cash_balance
		FROM users WHERE lower(email) = lower($1)
	`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT user_id, name, email, password_hash, cash_balance
		FROM users WHERE user_id = $1
	`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) ListStocks(ctx context.Context) ([]models.Stock, error) {
	const query = `
		SELECT stock_id, symbol, name, sector, current_price, day_change, momentum_score
		FROM stocks ORDER BY symbol ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Stock{}
	for rows.Next() {
		var stk models.Stock
		if err := rows.Scan(&stk.ID, &stk.Symbol, &stk.Name, &stk.Sector, &stk.CurrentPrice, &stk.DayChangePct, &stk.MomentumScore); err != nil {
			return nil, err
		}
		out = append(out, stk)
	}
	return out, rows.Err()
}

func (s *Store) StockByID(ctx context.Context, id int64) (*models.Stock, error) {
	const query = `
		SELECT stock_id, symbol, name, sector, current_price, day_change, momentum_score
		FROM stocks WHERE stock_id = $1
	`
	var stk models.Stock
	err := s.db.QueryRowContext(ctx, query, id).Scan(&stk.ID, &stk.Symbol, &stk.Name, &stk.Sector, &stk.CurrentPrice, &stk.DayChangePct, &stk.MomentumScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stk, nil
}

func (s *Store) SeedStocks(ctx context.Context, stocks []models.Stock) error {
	const query = `
		INSERT INTO stocks (symbol, name, sector, current_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO NOTHING
	`
	for _, stk := range stocks {
		if _, err := s.db.ExecContext(ctx, query, stk.Symbol, stk.Name, stk.Sector, stk.CurrentPrice); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateQuote(ctx context.Context, stockID int64, price, dayChangePct, momentum decimal.Decimal) error {
	const query = `
		UPDATE stocks SET current_price = $1, day_change = $2, momentum_score = $3
		WHERE stock_id = $4
	`
	res, err := s.db.ExecContext(ctx, query, price, dayChangePct, momentum, stockID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) ExecuteTrade(ctx context.Context, txn models.Transaction, cashDelta decimal.Decimal) (models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const balanceQuery = `
		UPDATE users SET cash_balance = cash_balance + $1
		WHERE user_id = $2 AND cash_balance + $1 >= 0
	`
	res, err := tx.ExecContext(ctx, balanceQuery, cashDelta, txn.UserID)
	if err != nil {
		return models.Transaction{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if exists, err := userExists(ctx, tx, txn.UserID); err != nil {
			return models.Transaction{}, err
		} else if !exists {
			return models.Transaction{}, repository.ErrNotFound
		}
		return models.Transaction{}, repository.ErrInsufficientFunds
	}

	const insertQuery = `
		INSERT INTO transactions (user_id, stock_id, txn_type, quantity, price, txn_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING txn_id
	`
	if err := tx.QueryRowContext(ctx, insertQuery,
		txn.UserID, txn.StockID, string(txn.Type), txn.Quantity, txn.Price, txn.Date).Scan(&txn.ID); err != nil {
		return models.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

func (s *Store) ListTransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	const query = `
		SELECT t.txn_id, t.user_id, t.stock_id, s.symbol, t.txn_type, t.quantity, t.price, t.txn_date
		FROM transactions t
		JOIN stocks s ON t.stock_id = s.stock_id
		WHERE t.user_id = $1
		ORDER BY t.txn_date ASC, t.txn_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var txnType string
		if err := rows.Scan(&t.ID, &t.UserID, &t.StockID, &t.Symbol, &txnType, &t.Quantity, &t.Price, &t.Date); err != nil {
			return nil, err
		}
		t.Type = models.TxnType(txnType)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) TableRows(ctx context.Context, table string) ([]map[string]any, error) {
	// The table name cannot be a placeholder, so it is checked against the
	// catalog before being interpolated.
	allowed, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(allowed, table) {
		return nil, fmt.Errorf("%w: table %s", repository.ErrNotFound, table)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CashBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func userExists(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
