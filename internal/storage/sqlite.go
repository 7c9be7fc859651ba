// Package storage provides the data persistence layer for paycal.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/service"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dateLayout is how civil dates (due dates, posting dates) are stored.
const dateLayout = "2006-01-02"

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	loc    *time.Location
	dbPath string
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithLocation sets the timezone stored dates are read back in. It should
// match the calendar the dates are computed with. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *SQLiteStorage) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// inTx runs fn in its own transaction, committing only if fn succeeds.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) formatDate(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}

func (s *SQLiteStorage) parseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored date %q: %w", v, err)
	}
	return t, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("close the storage, not the transaction")
}

// Account methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return t.storage.createAccountTx(ctx, t.tx, account)
}

func (t *sqliteTransaction) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAccount(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetPrimaryAccount(ctx context.Context) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getPrimaryAccount(ctx, t.tx)
}

func (t *sqliteTransaction) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listAccounts(ctx, t.tx)
}

func (t *sqliteTransaction) SetPrimaryAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.setPrimaryAccountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.updateAccountBalance(ctx, t.tx, id, balance)
}

func (t *sqliteTransaction) AdjustAccountBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	return t.storage.adjustAccountBalanceTx(ctx, t.tx, id, delta)
}

func (t *sqliteTransaction) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteAccountTx(ctx, t.tx, id)
}

// Bill methods.
func (t *sqliteTransaction) CreateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	return t.storage.createBill(ctx, t.tx, bill)
}

func (t *sqliteTransaction) GetBill(ctx context.Context, id int64) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getBill(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListBills(ctx context.Context) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listBills(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	return t.storage.updateBill(ctx, t.tx, bill)
}

func (t *sqliteTransaction) DeleteBill(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteBill(ctx, t.tx, id)
}

// Ledger methods.
func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}
	return t.storage.saveTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return t.storage.getTransactions(ctx, t.tx, filter)
}

// Settings methods.
func (t *sqliteTransaction) GetPaydaySettings(ctx context.Context) (*model.PaydaySettings, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getPaydaySettings(ctx, t.tx)
}

func (t *sqliteTransaction) SavePaydaySettings(ctx context.Context, settings *model.PaydaySettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if settings == nil {
		return fmt.Errorf("%w: settings", ErrNilParameter)
	}
	return t.storage.savePaydaySettings(ctx, t.tx, settings)
}
