package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/shopspring/decimal"
)

// ErrBillNotFound is returned when a bill is not found.
var ErrBillNotFound = fmt.Errorf("bill %w", common.ErrNotFound)

const billColumns = `id, name, amount, due_date, recurrence, is_paid, account_id, notes, created_at, updated_at`

// CreateBill inserts bill and sets its ID.
func (s *SQLiteStorage) CreateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	return s.createBill(ctx, s.db, bill)
}

func (s *SQLiteStorage) createBill(ctx context.Context, q queryable, bill *model.Bill) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO bills (name, amount, due_date, recurrence, is_paid, account_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bill.Name, bill.Amount.String(), s.formatDate(bill.DueDate), string(bill.Recurrence),
		bill.IsPaid, nullableID(bill.AccountID), bill.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	bill.ID = id
	slog.Info("created bill", "id", id, "name", bill.Name, "due", s.formatDate(bill.DueDate))
	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStorage) GetBill(ctx context.Context, id int64) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBill(ctx, s.db, id)
}

func (s *SQLiteStorage) getBill(ctx context.Context, q queryable, id int64) (*model.Bill, error) {
	row := q.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	bill, err := s.scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrBillNotFound, id)
	}
	return bill, err
}

// ListBills returns all bills ordered by due date.
func (s *SQLiteStorage) ListBills(ctx context.Context) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listBills(ctx, s.db)
}

func (s *SQLiteStorage) listBills(ctx context.Context, q queryable) ([]model.Bill, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+billColumns+` FROM bills ORDER BY due_date, name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.Bill
	for rows.Next() {
		bill, err := s.scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

// UpdateBill writes every mutable field of bill.
func (s *SQLiteStorage) UpdateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	return s.updateBill(ctx, s.db, bill)
}

func (s *SQLiteStorage) updateBill(ctx context.Context, q queryable, bill *model.Bill) error {
	result, err := q.ExecContext(ctx, `
		UPDATE bills SET
			name = ?, amount = ?, due_date = ?, recurrence = ?, is_paid = ?,
			account_id = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		bill.Name, bill.Amount.String(), s.formatDate(bill.DueDate), string(bill.Recurrence), bill.IsPaid,
		nullableID(bill.AccountID), bill.Notes, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if err := requireRow(result, ErrBillNotFound, bill.ID); err != nil {
		return err
	}
	slog.Debug("updated bill", "id", bill.ID, "due", s.formatDate(bill.DueDate), "paid", bill.IsPaid)
	return nil
}

// DeleteBill removes a bill. Payments already recorded for it are kept.
func (s *SQLiteStorage) DeleteBill(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteBill(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteBill(ctx context.Context, q queryable, id int64) error {
	if _, err := q.ExecContext(ctx, `UPDATE transactions SET bill_id = NULL WHERE bill_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach bill payments: %w", err)
	}
	result, err := q.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if err := requireRow(result, ErrBillNotFound, id); err != nil {
		return err
	}
	slog.Info("deleted bill", "id", id)
	return nil
}

func (s *SQLiteStorage) scanBill(row rowScanner) (*model.Bill, error) {
	var (
		bill      model.Bill
		amount    string
		dueDate   string
		recur     string
		accountID sql.NullInt64
	)
	err := row.Scan(&bill.ID, &bill.Name, &amount, &dueDate, &recur, &bill.IsPaid,
		&accountID, &bill.Notes, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}

	if bill.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse amount for bill %d: %w", bill.ID, err)
	}
	if bill.DueDate, err = s.parseDate(dueDate); err != nil {
		return nil, err
	}
	bill.Recurrence = recurrence.Recurrence(recur)
	if accountID.Valid {
		bill.AccountID = &accountID.Int64
	}
	return &bill, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
