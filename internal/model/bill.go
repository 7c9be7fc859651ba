package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/shopspring/decimal"
)

// ErrInvalidBill is returned by Bill.Validate.
var ErrInvalidBill = errors.New("invalid bill")

// Bill is an obligation with a due date that rolls forward when paid.
type Bill struct {
	DueDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	AccountID  *int64 // account payments are drawn from; nil means primary
	Amount     decimal.Decimal
	Name       string
	Recurrence recurrence.Recurrence
	Notes      string
	ID         int64
	IsPaid     bool
}

// Validate checks that the bill can be stored and advanced.
func (b *Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBill)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidBill, b.Amount)
	}
	if b.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidBill)
	}
	if !b.Recurrence.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidBill, recurrence.ErrUnknownRecurrence, b.Recurrence)
	}
	return nil
}

// Cycle returns the part of the bill that payment advances.
func (b *Bill) Cycle() recurrence.Cycle {
	return recurrence.Cycle{DueDate: b.DueDate, Paid: b.IsPaid}
}

// SetCycle copies c back onto the bill.
func (b *Bill) SetCycle(c recurrence.Cycle) {
	b.DueDate = c.DueDate
	b.IsPaid = c.Paid
}
