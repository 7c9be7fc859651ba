package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/ofx"
	"github.com/shopspring/decimal"
)

// ImportResult reports what ApplyStatement changed.
type ImportResult struct {
	Balance         *decimal.Decimal // nil when the statement carried no ledger balance
	Inserted        int
	Skipped         int
	BalanceReplaced bool
}

// ApplyStatement stores a parsed statement's transactions against accountID
// and, when the statement reports a ledger balance, replaces the account's
// balance with it. Transactions already imported are skipped.
func (s *Service) ApplyStatement(ctx context.Context, accountID int64, stmt ofx.Statement) (*ImportResult, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	if len(stmt.Transactions) > 0 {
		txns := make([]model.Transaction, len(stmt.Transactions))
		copy(txns, stmt.Transactions)
		for i := range txns {
			txns[i].AccountID = accountID
			txns[i].Hash = txns[i].GenerateHash()
		}
		inserted, err := tx.SaveTransactions(ctx, txns)
		if err != nil {
			return nil, fmt.Errorf("failed to save statement transactions: %w", err)
		}
		result.Inserted = inserted
		result.Skipped = len(txns) - inserted
	}

	if stmt.Balance != nil {
		if err := tx.UpdateAccountBalance(ctx, accountID, stmt.Balance.Amount); err != nil {
			return nil, err
		}
		bal := stmt.Balance.Amount
		result.Balance = &bal
		result.BalanceReplaced = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("applied statement",
		"account", accountID,
		"bank_account", stmt.AccountID,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"balance_replaced", result.BalanceReplaced)
	return result, nil
}
