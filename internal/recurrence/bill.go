package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence is the rule that advances a bill's due date after payment.
type Recurrence string

// Supported bill recurrences.
const (
	RecurOneTime   Recurrence = "oneTime"
	RecurWeekly    Recurrence = "weekly"
	RecurBiweekly  Recurrence = "biweekly"
	RecurMonthly   Recurrence = "monthly"
	RecurQuarterly Recurrence = "quarterly"
	RecurYearly    Recurrence = "yearly"
)

// Recurrences lists every supported recurrence in display order.
var Recurrences = []Recurrence{RecurOneTime, RecurWeekly, RecurBiweekly, RecurMonthly, RecurQuarterly, RecurYearly}

// ParseRecurrence is case-insensitive and accepts "one-time"/"once".
func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onetime", "one-time", "once":
		return RecurOneTime, nil
	case "weekly":
		return RecurWeekly, nil
	case "biweekly", "bi-weekly":
		return RecurBiweekly, nil
	case "monthly":
		return RecurMonthly, nil
	case "quarterly":
		return RecurQuarterly, nil
	case "yearly", "annually":
		return RecurYearly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRecurrence, s)
	}
}

// IsRecurring is false only for RecurOneTime.
func (r Recurrence) IsRecurring() bool {
	return r != RecurOneTime
}

// Valid reports whether r is one of the supported recurrences.
func (r Recurrence) Valid() bool {
	for _, known := range Recurrences {
		if r == known {
			return true
		}
	}
	return false
}

// NextOccurrence advances from by one period of r. A one-time recurrence
// returns from unchanged.
func (c Calendar) NextOccurrence(r Recurrence, from time.Time) (time.Time, error) {
	switch r {
	case RecurOneTime:
		return from, nil
	case RecurWeekly:
		return c.AddDays(from, 7), nil
	case RecurBiweekly:
		return c.AddDays(from, 14), nil
	case RecurMonthly:
		return c.AddMonths(from, 1), nil
	case RecurQuarterly:
		return c.AddMonths(from, 3), nil
	case RecurYearly:
		return c.AddYears(from, 1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRecurrence, r)
	}
}

// DaysUntilDue is the signed day count from today to due. Negative means
// overdue.
func (c Calendar) DaysUntilDue(due, today time.Time) int {
	return c.DaysBetween(today, due)
}

// IsDue reports whether a bill due on due falls on date.
func (c Calendar) IsDue(due, date time.Time) bool {
	return c.SameDay(due, date)
}

// Occurrences projects due dates of a bill in the inclusive range
// [from, to], starting at due. A one-time bill yields at most due itself.
func (c Calendar) Occurrences(r Recurrence, due, from, to time.Time) ([]time.Time, error) {
	if c.DaysBetween(from, to) < 0 {
		return nil, ErrInvalidRange
	}
	var out []time.Time
	d := c.StartOfDay(due)
	for c.DaysBetween(d, to) >= 0 {
		if c.DaysBetween(from, d) >= 0 {
			out = append(out, d)
		}
		if !r.IsRecurring() {
			break
		}
		next, err := c.NextOccurrence(r, d)
		if err != nil {
			return nil, err
		}
		d = next
	}
	return out, nil
}

// DueSoonWindow is how many days ahead an unpaid bill counts as due soon.
const DueSoonWindow = 7

// Status classifies a bill for display.
type Status string

// Bill statuses. Exactly one applies to any (paid, daysUntilDue) pair.
const (
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusDueSoon  Status = "dueSoon"
	StatusUpcoming Status = "upcoming"
)

// Classify derives a bill's status from its paid flag and signed day count.
func Classify(isPaid bool, daysUntilDue int) Status {
	switch {
	case isPaid:
		return StatusPaid
	case daysUntilDue < 0:
		return StatusOverdue
	case daysUntilDue <= DueSoonWindow:
		return StatusDueSoon
	default:
		return StatusUpcoming
	}
}

// BillStatus classifies a bill due on due as seen on today.
func (c Calendar) BillStatus(due time.Time, isPaid bool, today time.Time) Status {
	return Classify(isPaid, c.DaysUntilDue(due, today))
}

// Cycle is the part of a bill that payment changes.
type Cycle struct {
	DueDate time.Time
	Paid    bool
}

// Pay returns the cycle that follows paying cur. A recurring bill moves to
// its next due date and is unpaid again; a one-time bill stays on its due
// date and is marked paid.
func (c Calendar) Pay(r Recurrence, cur Cycle) (Cycle, error) {
	if !r.IsRecurring() {
		return Cycle{DueDate: cur.DueDate, Paid: true}, nil
	}
	next, err := c.NextOccurrence(r, cur.DueDate)
	if err != nil {
		return Cycle{}, err
	}
	return Cycle{DueDate: next, Paid: false}, nil
}
