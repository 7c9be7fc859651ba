// Package recurrence computes payday schedules, bill recurrences and the
// day counts derived from them.
//
// Every function takes its reference date explicitly; nothing in this package
// reads the wall clock. Day boundaries are resolved in a single timezone held
// by a Calendar. The package-level helpers use the process-local zone.
package recurrence

import "time"

// Calendar resolves civil days in one fixed location.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar bound to loc. A nil loc means time.Local.
func NewCalendar(loc *time.Location) Calendar {
	return Calendar{loc: loc}
}

// Local returns a calendar bound to the process-local timezone.
func Local() Calendar {
	return Calendar{loc: time.Local}
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Date builds midnight of the given civil date, clamping day to the length
// of the month.
func (c Calendar) Date(year int, month time.Month, day int) time.Time {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, c.Location())
}

// StartOfDay returns midnight of t's civil day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// DaysBetween counts whole civil days from a to b. It is negative when b
// falls on an earlier day than a. Time of day is ignored.
func (c Calendar) DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(c.Location()).Date()
	by, bm, bd := b.In(c.Location()).Date()
	// Civil dates projected to UTC are exactly 24h apart, so DST
	// transitions in the calendar's zone cannot skew the count.
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// SameDay reports whether a and b fall on the same civil day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DaysBetween(a, b) == 0
}

// DayOfWeek returns 1 (Sunday) through 7 (Saturday).
func (c Calendar) DayOfWeek(t time.Time) int {
	return int(t.In(c.Location()).Weekday()) + 1
}

// DayOfMonth returns 1 through 31.
func (c Calendar) DayOfMonth(t time.Time) int {
	return t.In(c.Location()).Day()
}

// AddDays moves t by n civil days and returns midnight of that day.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, c.Location())
}

// AddMonths moves t by n calendar months. A day that does not exist in the
// target month is clamped to the month's last day (Jan 31 + 1 month is
// Feb 28 or 29).
func (c Calendar) AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.In(c.Location()).Date()
	total := int(m) - 1 + n
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	return c.Date(year, month, d)
}

// AddYears moves t by n calendar years, clamping Feb 29 to Feb 28.
func (c Calendar) AddYears(t time.Time, n int) time.Time {
	return c.AddMonths(t, 12*n)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func absMod(n, m int) int {
	if n < 0 {
		n = -n
	}
	return n % m
}

// StartOfDay is Local().StartOfDay.
func StartOfDay(t time.Time) time.Time { return Local().StartOfDay(t) }

// DaysBetween is Local().DaysBetween.
func DaysBetween(a, b time.Time) int { return Local().DaysBetween(a, b) }

// DayOfWeek is Local().DayOfWeek.
func DayOfWeek(t time.Time) int { return Local().DayOfWeek(t) }

// DayOfMonth is Local().DayOfMonth.
func DayOfMonth(t time.Time) int { return Local().DayOfMonth(t) }

// AddDays is Local().AddDays.
func AddDays(t time.Time, n int) time.Time { return Local().AddDays(t, n) }

// AddMonths is Local().AddMonths.
func AddMonths(t time.Time, n int) time.Time { return Local().AddMonths(t, n) }

// AddYears is Local().AddYears.
func AddYears(t time.Time, n int) time.Time { return Local().AddYears(t, n) }
