package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// ErrAccountNotFound is returned when an account is not found.
var ErrAccountNotFound = fmt.Errorf("account %w", common.ErrNotFound)

const accountColumns = `id, name, balance, is_primary, created_at, updated_at`

// CreateAccount inserts account and sets its ID. The first account created
// becomes primary, as does any account created with IsPrimary set.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.createAccountTx(ctx, tx, account)
	})
}

func (s *SQLiteStorage) createAccountTx(ctx context.Context, tx *sql.Tx, account *model.Account) error {
	var primaries int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE is_primary = 1`).Scan(&primaries); err != nil {
		return fmt.Errorf("failed to count primary accounts: %w", err)
	}
	if primaries == 0 {
		account.IsPrimary = true
	}
	if account.IsPrimary && primaries > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE accounts SET is_primary = 0, updated_at = CURRENT_TIMESTAMP WHERE is_primary = 1`); err != nil {
			return fmt.Errorf("failed to clear primary account: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (name, balance, is_primary) VALUES (?, ?, ?)`,
		account.Name, account.Balance.String(), account.IsPrimary)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: account %q already exists", common.ErrDuplicateEntry, account.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	account.ID = id
	slog.Info("created account", "id", id, "name", account.Name, "primary", account.IsPrimary)
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccount(ctx, s.db, id)
}

func (s *SQLiteStorage) getAccount(ctx context.Context, q queryable, id int64) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
	}
	return account, err
}

// GetPrimaryAccount returns the primary account, or ErrAccountNotFound if
// there are no accounts.
func (s *SQLiteStorage) GetPrimaryAccount(ctx context.Context) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPrimaryAccount(ctx, s.db)
}

func (s *SQLiteStorage) getPrimaryAccount(ctx context.Context, q queryable) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_primary = 1`)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no primary account", ErrAccountNotFound)
	}
	return account, err
}

// ListAccounts returns all accounts, primary first.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAccounts(ctx, s.db)
}

func (s *SQLiteStorage) listAccounts(ctx context.Context, q queryable) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY is_primary DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// SetPrimaryAccount makes id the only primary account.
func (s *SQLiteStorage) SetPrimaryAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.setPrimaryAccountTx(ctx, tx, id)
	})
}

func (s *SQLiteStorage) setPrimaryAccountTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := s.getAccount(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET is_primary = 0, updated_at = CURRENT_TIMESTAMP WHERE is_primary = 1 AND id != ?`, id); err != nil {
		return fmt.Errorf("failed to clear primary account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET is_primary = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to set primary account: %w", err)
	}
	slog.Info("set primary account", "id", id)
	return nil
}

// UpdateAccountBalance overwrites an account's balance.
func (s *SQLiteStorage) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateAccountBalance(ctx, s.db, id, balance)
}

func (s *SQLiteStorage) updateAccountBalance(ctx context.Context, q queryable, id int64, balance decimal.Decimal) error {
	result, err := q.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	if err := requireRow(result, ErrAccountNotFound, id); err != nil {
		return err
	}
	slog.Debug("updated account balance", "id", id, "balance", balance.String())
	return nil
}

// AdjustAccountBalance adds delta to an account's balance and returns the
// new balance.
func (s *SQLiteStorage) AdjustAccountBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	var balance decimal.Decimal
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, err = s.adjustAccountBalanceTx(ctx, tx, id, delta)
		return err
	})
	return balance, err
}

func (s *SQLiteStorage) adjustAccountBalanceTx(ctx context.Context, tx *sql.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	account, err := s.getAccount(ctx, tx, id)
	if err != nil {
		return decimal.Zero, err
	}
	balance := account.Balance.Add(delta)
	if err := s.updateAccountBalance(ctx, tx, id, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// DeleteAccount removes an account and its transactions. Bills drawn from
// it fall back to the primary account. If the primary account is deleted
// the oldest remaining account is promoted.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.deleteAccountTx(ctx, tx, id)
	})
}

func (s *SQLiteStorage) deleteAccountTx(ctx context.Context, tx *sql.Tx, id int64) error {
	account, err := s.getAccount(ctx, tx, id)
	if err != nil {
		return err
	}

	queries := []string{
		`DELETE FROM transactions WHERE account_id = ?`,
		`UPDATE bills SET account_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE account_id = ?`,
		`DELETE FROM accounts WHERE id = ?`,
	}
	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
	}

	if account.IsPrimary {
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET is_primary = 1, updated_at = CURRENT_TIMESTAMP
			WHERE id = (SELECT MIN(id) FROM accounts)`); err != nil {
			return fmt.Errorf("failed to promote primary account: %w", err)
		}
	}

	slog.Info("deleted account", "id", id, "name", account.Name)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		account model.Account
		balance string
	)
	err := row.Scan(&account.ID, &account.Name, &balance, &account.IsPrimary, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("failed to parse balance for account %d: %w", account.ID, err)
	}
	return &account, nil
}

// requireRow maps a zero-row update to notFound.
func requireRow(result sql.Result, notFound error, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", notFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
