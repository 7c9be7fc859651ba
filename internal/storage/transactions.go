package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/service"
	"github.com/shopspring/decimal"
)

// SaveTransactions stores transactions, skipping any whose hash is already
// present, and returns how many were inserted. Missing hashes are generated.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	var inserted int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		inserted, err = s.saveTransactionsTx(ctx, tx, transactions)
		return err
	})
	return inserted, err
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			account_id, date, description, amount, bill_id, fitid, hash
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range transactions {
		txn := &transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		result, err := stmt.ExecContext(ctx,
			txn.AccountID,
			s.formatDate(txn.Date),
			txn.Description,
			txn.Amount.String(),
			nullableID(txn.BillID),
			txn.FITID,
			txn.Hash,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %q: %w", txn.Description, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			slog.Debug("skipped duplicate transaction", "hash", txn.Hash)
			continue
		}
		if txn.ID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to get last insert id: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

// GetTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.getTransactions(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactions(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.AccountID != nil {
		where = append(where, "account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, s.formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, s.formatDate(*filter.EndDate))
	}

	query := `SELECT id, account_id, date, description, amount, bill_id, fitid, hash, created_at FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn    model.Transaction
			date   string
			amount string
			billID sql.NullInt64
		)
		if err := rows.Scan(&txn.ID, &txn.AccountID, &date, &txn.Description, &amount,
			&billID, &txn.FITID, &txn.Hash, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if txn.Date, err = s.parseDate(date); err != nil {
			return nil, err
		}
		if txn.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount for transaction %d: %w", txn.ID, err)
		}
		if billID.Valid {
			txn.BillID = &billID.Int64
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}
