// Package service defines the interfaces shared between paycal's layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionFilter defines filtering options for transaction queries.
// Dates are inclusive civil days.
type TransactionFilter struct {
	AccountID *int64
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetPrimaryAccount(ctx context.Context) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	SetPrimaryAccount(ctx context.Context, id int64) error
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	AdjustAccountBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	DeleteAccount(ctx context.Context, id int64) error

	// Bill operations
	CreateBill(ctx context.Context, bill *model.Bill) error
	GetBill(ctx context.Context, id int64) (*model.Bill, error)
	ListBills(ctx context.Context) ([]model.Bill, error)
	UpdateBill(ctx context.Context, bill *model.Bill) error
	DeleteBill(ctx context.Context, id int64) error

	// Ledger operations. SaveTransactions skips duplicates by hash and
	// returns how many rows were inserted.
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Payday settings
	GetPaydaySettings(ctx context.Context) (*model.PaydaySettings, error)
	SavePaydaySettings(ctx context.Context, settings *model.PaydaySettings) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
