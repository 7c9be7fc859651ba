// Package budget combines stored accounts, bills and payday settings with
// the recurrence engine to answer "how much can I spend per day" and "what
// is due when".
//
// Every method takes "today" from its caller; nothing here reads the clock.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/Veraticus/paycal/internal/service"
	"github.com/Veraticus/paycal/internal/storage"
	"github.com/shopspring/decimal"
)

// Service errors.
var (
	ErrPaydayNotConfigured = errors.New("payday is not configured")
	ErrNoPrimaryAccount    = errors.New("no primary account")
	ErrBillAlreadyPaid     = errors.New("bill is already paid")
	ErrPaymentRecorded     = errors.New("payment is already recorded")
)

// Service answers budget questions over a Storage.
type Service struct {
	store   service.Storage
	cal     recurrence.Calendar
	lenient bool
}

// NewService creates a budget service. lenient enables the fixed-interval
// fallback for weekly and biweekly settings saved without a weekday.
func NewService(store service.Storage, cal recurrence.Calendar, lenient bool) *Service {
	return &Service{
		store:   store,
		cal:     cal,
		lenient: lenient,
	}
}

// Calendar returns the calendar the service computes with.
func (s *Service) Calendar() recurrence.Calendar {
	return s.cal
}

// Summary is the dashboard line: what the primary account can spend per day
// until the next payday.
type Summary struct {
	NextPayday      time.Time
	Account         model.Account
	Balance         decimal.Decimal
	DailyBudget     decimal.Decimal
	DueBeforePayday decimal.Decimal // unpaid bills due before the next payday, overdue included
	Frequency       recurrence.Frequency
	DaysUntilPayday int
}

// Schedule loads and validates the saved payday schedule.
func (s *Service) Schedule(ctx context.Context) (recurrence.Schedule, error) {
	settings, err := s.store.GetPaydaySettings(ctx)
	if errors.Is(err, storage.ErrPaydaySettingsNotFound) {
		return nil, common.NewUserError("payday is not configured; run `paycal payday set`", ErrPaydayNotConfigured)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payday settings: %w", err)
	}

	schedule, err := settings.Schedule(s.lenient)
	if err != nil {
		return nil, common.NewUserError("saved payday settings are invalid; run `paycal payday set`", err)
	}
	// Surface calendar-dependent checks (biweekly anchor weekday) now.
	if _, err := s.cal.IsPayday(schedule, settings.ReferenceDate); err != nil {
		return nil, common.NewUserError("saved payday settings are invalid; run `paycal payday set`", err)
	}
	return schedule, nil
}

// SavePayday validates schedule against the service's calendar and persists
// it.
func (s *Service) SavePayday(ctx context.Context, schedule recurrence.Schedule, reference time.Time) error {
	if _, err := s.cal.NextPayday(schedule, reference); err != nil {
		return err
	}
	cfg := recurrence.Config(schedule, s.cal.StartOfDay(reference))
	return s.store.SavePaydaySettings(ctx, &model.PaydaySettings{PaydayConfig: cfg})
}

// NextPayday returns the first payday strictly after today.
//
// Monthly schedules are evaluated against the anchor advanced to today's
// neighbourhood, counted in whole months from the stored reference date so
// that a clamped month (Feb 29) does not shift later months.
func (s *Service) NextPayday(schedule recurrence.Schedule, today time.Time) (time.Time, error) {
	m, ok := schedule.(recurrence.Monthly)
	if !ok {
		return s.cal.NextPayday(schedule, today)
	}
	if err := m.Validate(); err != nil {
		return time.Time{}, err
	}

	ref := m.Anchor.In(s.cal.Location())
	now := today.In(s.cal.Location())
	k := (now.Year()-ref.Year())*12 + int(now.Month()-ref.Month()) - 1
	for ; ; k++ {
		if d := s.cal.AddMonths(ref, k); s.cal.DaysBetween(today, d) > 0 {
			return d, nil
		}
	}
}

// DaysUntilPayday is never less than 1.
func (s *Service) DaysUntilPayday(schedule recurrence.Schedule, today time.Time) (int, error) {
	next, err := s.NextPayday(schedule, today)
	if err != nil {
		return 0, err
	}
	return max(s.cal.DaysBetween(today, next), 1), nil
}

// NextPaydays lists the next n paydays after today.
func (s *Service) NextPaydays(ctx context.Context, today time.Time, n int) ([]time.Time, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	first, err := s.NextPayday(schedule, today)
	if err != nil {
		return nil, err
	}
	out := []time.Time{first}
	for len(out) < n {
		next, err := s.NextPayday(schedule, out[len(out)-1])
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}

// Summary computes the daily budget of the primary account as of today.
func (s *Service) Summary(ctx context.Context, today time.Time) (*Summary, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetPrimaryAccount(ctx)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return nil, common.NewUserError("no primary account; run `paycal accounts add`", ErrNoPrimaryAccount)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load primary account: %w", err)
	}

	next, err := s.NextPayday(schedule, today)
	if err != nil {
		return nil, err
	}
	days, err := s.DaysUntilPayday(schedule, today)
	if err != nil {
		return nil, err
	}

	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	due := decimal.Zero
	for _, b := range bills {
		if !b.IsPaid && s.cal.DaysBetween(b.DueDate, next) > 0 {
			due = due.Add(b.Amount)
		}
	}

	return &Summary{
		Account:         *account,
		Balance:         account.Balance,
		Frequency:       schedule.Frequency(),
		NextPayday:      next,
		DaysUntilPayday: days,
		DailyBudget:     recurrence.DailyBudget(account.Balance, days),
		DueBeforePayday: due,
	}, nil
}
