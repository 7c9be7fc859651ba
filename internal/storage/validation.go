package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	return account.Validate()
}

func validateBill(bill *model.Bill) error {
	if bill == nil {
		return fmt.Errorf("%w: bill", ErrNilParameter)
	}
	return bill.Validate()
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn.AccountID == 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	return nil
}

func validateFilter(filter service.TransactionFilter) error {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}
	return nil
}
