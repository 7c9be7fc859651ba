package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
)

// DayCell is one day of a month view.
type DayCell struct {
	Date     time.Time
	Bills    []BillStatus // bills falling due that day
	IsPayday bool
}

// MonthView lays out paydays and projected bill due dates for one month.
type MonthView struct {
	Days  []DayCell
	Year  int
	Month time.Month
	// PaydayConfigured is false when no payday settings are saved; the view
	// then carries bills only. Fixed-interval schedules mark no paydays.
	PaydayConfigured bool
}

// Month projects paydays and bill due dates onto every day of the month.
// Recurring bills are projected forward from their current due date. Only a
// bill's current cycle can show as paid. Statuses are classified as of today.
func (s *Service) Month(ctx context.Context, year int, month time.Month, today time.Time) (*MonthView, error) {
	first := s.cal.Date(year, month, 1)
	last := s.cal.Date(year, month, recurrence.DaysInMonth(year, month))

	view := &MonthView{Year: year, Month: month}
	for d := first; s.cal.DaysBetween(d, last) >= 0; d = s.cal.AddDays(d, 1) {
		view.Days = append(view.Days, DayCell{Date: d})
	}

	schedule, err := s.Schedule(ctx)
	switch {
	case errors.Is(err, ErrPaydayNotConfigured):
		slog.Debug("month view without paydays", "reason", err)
	case err != nil:
		return nil, err
	default:
		view.PaydayConfigured = true
		paydays, err := s.cal.Paydays(schedule, first, last)
		if err != nil {
			return nil, err
		}
		for _, p := range paydays {
			view.Days[s.cal.DayOfMonth(p)-1].IsPayday = true
		}
	}

	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	for _, b := range bills {
		if err := s.placeBill(view, b, first, last, today); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (s *Service) placeBill(view *MonthView, b model.Bill, first, last, today time.Time) error {
	dates, err := s.cal.Occurrences(b.Recurrence, b.DueDate, first, last)
	if err != nil {
		return fmt.Errorf("bill %d: %w", b.ID, err)
	}
	for i, d := range dates {
		projected := b
		projected.DueDate = d
		if i > 0 || !s.cal.SameDay(d, b.DueDate) {
			projected.IsPaid = false
		}
		days := s.cal.DaysUntilDue(d, today)
		cell := &view.Days[s.cal.DayOfMonth(d)-1]
		cell.Bills = append(cell.Bills, BillStatus{
			Bill:         projected,
			DaysUntilDue: days,
			Status:       recurrence.Classify(projected.IsPaid, days),
		})
	}
	return nil
}
