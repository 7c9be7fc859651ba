package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/shopspring/decimal"
)

// BillStatus is a bill as seen on a given day.
type BillStatus struct {
	Bill         model.Bill
	Status       recurrence.Status
	DaysUntilDue int
}

// BillStatuses classifies every bill as of today, in due-date order.
func (s *Service) BillStatuses(ctx context.Context, today time.Time) ([]BillStatus, error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	statuses := make([]BillStatus, 0, len(bills))
	for _, b := range bills {
		days := s.cal.DaysUntilDue(b.DueDate, today)
		statuses = append(statuses, BillStatus{
			Bill:         b,
			DaysUntilDue: days,
			Status:       recurrence.Classify(b.IsPaid, days),
		})
	}
	return statuses, nil
}

// Payment describes a recorded bill payment.
type Payment struct {
	PaidOn      time.Time
	Bill        model.Bill // bill after its cycle advanced
	PaidCycle   recurrence.Cycle
	Transaction model.Transaction
	Balance     decimal.Decimal // paying account's balance afterwards
}

// PayBill records a payment of bill id on today. In one database
// transaction it posts a debit to the paying account, lowers that account's
// balance and advances the bill to its next cycle. A bill without an
// account is paid from the primary account.
func (s *Service) PayBill(ctx context.Context, id int64, today time.Time) (*Payment, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	bill, err := tx.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.IsPaid && !bill.Recurrence.IsRecurring() {
		return nil, fmt.Errorf("%w: %s", ErrBillAlreadyPaid, bill.Name)
	}

	var account *model.Account
	if bill.AccountID != nil {
		account, err = tx.GetAccount(ctx, *bill.AccountID)
	} else {
		account, err = tx.GetPrimaryAccount(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paying account: %w", err)
	}

	paid := bill.Cycle()
	next, err := s.cal.Pay(bill.Recurrence, paid)
	if err != nil {
		return nil, err
	}

	billID := bill.ID
	txn := model.Transaction{
		AccountID:   account.ID,
		Date:        s.cal.StartOfDay(today),
		Description: fmt.Sprintf("%s (due %s)", bill.Name, s.cal.StartOfDay(paid.DueDate).Format(time.DateOnly)),
		Amount:      bill.Amount.Neg(),
		BillID:      &billID,
	}
	txns := []model.Transaction{txn}
	inserted, err := tx.SaveTransactions(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if inserted != 1 {
		return nil, fmt.Errorf("%w: %s (due %s)", ErrPaymentRecorded, bill.Name, paid.DueDate.Format(time.DateOnly))
	}

	balance, err := tx.AdjustAccountBalance(ctx, account.ID, bill.Amount.Neg())
	if err != nil {
		return nil, err
	}

	bill.SetCycle(next)
	if err := tx.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	slog.Info("paid bill",
		"id", bill.ID,
		"name", bill.Name,
		"amount", bill.Amount.String(),
		"account", account.ID,
		"next_due", next.DueDate.Format(time.DateOnly))

	return &Payment{
		PaidOn:      txns[0].Date,
		Bill:        *bill,
		PaidCycle:   paid,
		Transaction: txns[0],
		Balance:     balance,
	}, nil
}
