// Package testutil provides test databases seeded with accounts and bills.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/service"
	"github.com/Veraticus/paycal/internal/storage"
	"github.com/shopspring/decimal"
)

// TestDB is a migrated SQLite database that lives for one test. It stores
// civil dates in UTC.
type TestDB struct {
	*storage.SQLiteStorage
	t *testing.T
}

// Options configures SetupTestDB.
type Options struct {
	CustomSetup func(context.Context, service.Storage) error
	Accounts    []model.Account
	Bills       []model.Bill
}

// SetupTestDB creates a migrated database in t.TempDir, seeds it from opts
// and closes it when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.Options{
//		Accounts: []model.Account{{Name: "Checking", Balance: testutil.Dec("1000")}},
//	})
func SetupTestDB(t *testing.T, opts Options) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "paycal.db"), storage.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{SQLiteStorage: store, t: t}
	for _, a := range opts.Accounts {
		db.AddAccount(a.Name, a.Balance.String())
	}
	for _, b := range opts.Bills {
		db.AddBill(b)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// AddAccount creates an account or fails the test.
func (db *TestDB) AddAccount(name, balance string) *model.Account {
	db.t.Helper()
	a := &model.Account{Name: name, Balance: Dec(balance)}
	if err := db.CreateAccount(context.Background(), a); err != nil {
		db.t.Fatalf("failed to seed account %q: %v", name, err)
	}
	return a
}

// AddBill creates a bill or fails the test.
func (db *TestDB) AddBill(b model.Bill) *model.Bill {
	db.t.Helper()
	if err := db.CreateBill(context.Background(), &b); err != nil {
		db.t.Fatalf("failed to seed bill %q: %v", b.Name, err)
	}
	return &b
}

// MustBill returns the bill named name or fails the test.
func (db *TestDB) MustBill(name string) model.Bill {
	db.t.Helper()
	bills, err := db.ListBills(context.Background())
	if err != nil {
		db.t.Fatalf("failed to list bills: %v", err)
	}
	for _, b := range bills {
		if b.Name == name {
			return b
		}
	}
	db.t.Fatalf("bill %q not found", name)
	return model.Bill{}
}

// WithTransaction runs fn in a transaction that is always rolled back.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	tx, err := db.BeginTx(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

// Day is midnight UTC on the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
