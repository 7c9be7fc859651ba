package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Frequency names how often a payday recurs.
type Frequency string

// Supported payday frequencies.
const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyBiweekly    Frequency = "biweekly"
	FrequencySemiMonthly Frequency = "semimonthly"
	FrequencyMonthly     Frequency = "monthly"
)

// Default semi-monthly paydays.
const (
	DefaultSemiMonthlyFirstDay  = 1
	DefaultSemiMonthlySecondDay = 15
)

// ParseFrequency accepts the canonical names plus a few common spellings.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return FrequencyWeekly, nil
	case "biweekly", "bi-weekly", "fortnightly":
		return FrequencyBiweekly, nil
	case "semimonthly", "semi-monthly", "twice-monthly":
		return FrequencySemiMonthly, nil
	case "monthly":
		return FrequencyMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
}

// Schedule is one of Weekly, Biweekly, SemiMonthly, Monthly or
// FixedInterval. The set is closed.
type Schedule interface {
	Frequency() Frequency
	Validate() error
	next(c Calendar, from time.Time) time.Time
	matches(c Calendar, date time.Time) bool
}

// Weekly pays on the same weekday every week.
type Weekly struct {
	Weekday int // 1=Sunday ... 7=Saturday
}

// Biweekly pays every other week on Weekday, in phase with Anchor.
type Biweekly struct {
	Anchor  time.Time // a known payday
	Weekday int
}

// SemiMonthly pays on two fixed days of every month.
type SemiMonthly struct {
	FirstDay  int
	SecondDay int
}

// Monthly pays on the anchor's day of month.
type Monthly struct {
	Anchor time.Time
}

// FixedInterval advances a flat number of days and never classifies a date
// as a payday. It stands in for weekly and biweekly settings saved without a
// weekday.
type FixedInterval struct {
	Days int
}

// Frequency implements Schedule.
func (Weekly) Frequency() Frequency { return FrequencyWeekly }

// Frequency implements Schedule.
func (Biweekly) Frequency() Frequency { return FrequencyBiweekly }

// Frequency implements Schedule.
func (SemiMonthly) Frequency() Frequency { return FrequencySemiMonthly }

// Frequency implements Schedule.
func (Monthly) Frequency() Frequency { return FrequencyMonthly }

// Frequency implements Schedule.
func (f FixedInterval) Frequency() Frequency {
	if f.Days == 14 {
		return FrequencyBiweekly
	}
	return FrequencyWeekly
}

// Validate implements Schedule.
func (w Weekly) Validate() error {
	return validateWeekday(w.Weekday)
}

// Validate implements Schedule.
func (b Biweekly) Validate() error {
	if err := validateWeekday(b.Weekday); err != nil {
		return err
	}
	if b.Anchor.IsZero() {
		return ErrMissingReferenceDate
	}
	return nil
}

// Validate implements Schedule.
func (s SemiMonthly) Validate() error {
	for _, d := range []int{s.FirstDay, s.SecondDay} {
		if d < 1 || d > 28 {
			return fmt.Errorf("%w: got %d", ErrInvalidSemiMonthlyDay, d)
		}
	}
	if s.FirstDay >= s.SecondDay {
		return fmt.Errorf("%w: %d >= %d", ErrSemiMonthlyOrder, s.FirstDay, s.SecondDay)
	}
	return nil
}

// Validate implements Schedule.
func (m Monthly) Validate() error {
	if m.Anchor.IsZero() {
		return ErrMissingReferenceDate
	}
	return nil
}

// Validate implements Schedule.
func (f FixedInterval) Validate() error {
	if f.Days < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, f.Days)
	}
	return nil
}

func validateWeekday(w int) error {
	if w == 0 {
		return ErrMissingWeekday
	}
	if w < 1 || w > 7 {
		return fmt.Errorf("%w: got %d", ErrInvalidWeekday, w)
	}
	return nil
}

func (w Weekly) next(c Calendar, from time.Time) time.Time {
	for i := 1; i <= 7; i++ {
		d := c.AddDays(from, i)
		if c.DayOfWeek(d) == w.Weekday {
			return d
		}
	}
	// Unreachable: seven consecutive days cover every weekday.
	return c.AddDays(from, 7)
}

func (w Weekly) matches(c Calendar, date time.Time) bool {
	return c.DayOfWeek(date) == w.Weekday
}

func (b Biweekly) next(c Calendar, from time.Time) time.Time {
	for i := 1; i <= 14; i++ {
		d := c.AddDays(from, i)
		if b.matches(c, d) {
			return d
		}
	}
	// Only reachable when the anchor is off-weekday, which validation rejects.
	return c.AddDays(from, 14)
}

func (b Biweekly) matches(c Calendar, date time.Time) bool {
	return c.DayOfWeek(date) == b.Weekday && absMod(c.DaysBetween(b.Anchor, date), 14) == 0
}

func (s SemiMonthly) next(c Calendar, from time.Time) time.Time {
	y, m, day := from.In(c.Location()).Date()
	switch {
	case day < s.FirstDay:
		return c.Date(y, m, s.FirstDay)
	case day < s.SecondDay:
		return c.Date(y, m, s.SecondDay)
	default:
		nextMonth := c.AddMonths(c.Date(y, m, 1), 1)
		return c.AddDays(nextMonth, s.FirstDay-1)
	}
}

func (s SemiMonthly) matches(c Calendar, date time.Time) bool {
	day := c.DayOfMonth(date)
	return day == s.FirstDay || day == s.SecondDay
}

// next keeps the anchor-relative rollover: once from reaches this month's
// payday, the result is one month after Anchor regardless of how far from has
// moved. Callers advance Anchor after each payday.
func (m Monthly) next(c Calendar, from time.Time) time.Time {
	y, mo, day := from.In(c.Location()).Date()
	target := c.Date(y, mo, c.DayOfMonth(m.Anchor))
	if day < c.DayOfMonth(target) {
		return target
	}
	return c.AddMonths(m.Anchor, 1)
}

func (m Monthly) matches(c Calendar, date time.Time) bool {
	y, mo, day := date.In(c.Location()).Date()
	want := c.DayOfMonth(m.Anchor)
	if last := DaysInMonth(y, mo); want > last {
		want = last
	}
	return day == want
}

func (f FixedInterval) next(c Calendar, from time.Time) time.Time {
	return c.AddDays(from, f.Days)
}

func (FixedInterval) matches(Calendar, time.Time) bool {
	return false
}

// validate runs the schedule's own checks plus those that depend on the
// calendar's timezone.
func (c Calendar) validate(s Schedule) error {
	if s == nil {
		return fmt.Errorf("%w: nil schedule", ErrUnknownFrequency)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if b, ok := s.(Biweekly); ok && c.DayOfWeek(b.Anchor) != b.Weekday {
		return fmt.Errorf("%w: anchor is weekday %d, schedule wants %d",
			ErrAnchorWeekdayMismatch, c.DayOfWeek(b.Anchor), b.Weekday)
	}
	return nil
}

// NextPayday returns the first payday strictly after from. Monthly schedules
// are the exception: see Monthly.
func (c Calendar) NextPayday(s Schedule, from time.Time) (time.Time, error) {
	if err := c.validate(s); err != nil {
		return time.Time{}, err
	}
	return s.next(c, from), nil
}

// IsPayday reports whether date is a payday under s.
func (c Calendar) IsPayday(s Schedule, date time.Time) (bool, error) {
	if err := c.validate(s); err != nil {
		return false, err
	}
	return s.matches(c, date), nil
}

// DaysUntilPayday returns the whole days from today to the next payday,
// never less than 1.
func (c Calendar) DaysUntilPayday(s Schedule, today time.Time) (int, error) {
	next, err := c.NextPayday(s, today)
	if err != nil {
		return 0, err
	}
	return max(c.DaysBetween(today, next), 1), nil
}

// Paydays lists every payday in the inclusive range [from, to].
func (c Calendar) Paydays(s Schedule, from, to time.Time) ([]time.Time, error) {
	if err := c.validate(s); err != nil {
		return nil, err
	}
	n := c.DaysBetween(from, to)
	if n < 0 {
		return nil, ErrInvalidRange
	}
	var out []time.Time
	start := c.StartOfDay(from)
	for i := 0; i <= n; i++ {
		d := c.AddDays(start, i)
		if s.matches(c, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// PaydayConfig holds payday settings as they are stored: a frequency tag
// plus optional fields whose meaning depends on it.
type PaydayConfig struct {
	ReferenceDate        time.Time
	Weekday              *int
	SemiMonthlyFirstDay  *int
	SemiMonthlySecondDay *int
	Frequency            Frequency
}

// Schedule converts stored settings into a typed schedule. Semi-monthly days
// default to 1 and 15. A weekly or biweekly config without a weekday is an
// error unless lenient is set, in which case it becomes a 7 or 14 day
// FixedInterval.
func (p PaydayConfig) Schedule(lenient bool) (Schedule, error) {
	var s Schedule
	switch p.Frequency {
	case FrequencyWeekly:
		if p.Weekday == nil {
			if !lenient {
				return nil, ErrMissingWeekday
			}
			s = FixedInterval{Days: 7}
		} else {
			s = Weekly{Weekday: *p.Weekday}
		}
	case FrequencyBiweekly:
		if p.Weekday == nil {
			if !lenient {
				return nil, ErrMissingWeekday
			}
			s = FixedInterval{Days: 14}
		} else {
			s = Biweekly{Weekday: *p.Weekday, Anchor: p.ReferenceDate}
		}
	case FrequencySemiMonthly:
		sm := SemiMonthly{FirstDay: DefaultSemiMonthlyFirstDay, SecondDay: DefaultSemiMonthlySecondDay}
		if p.SemiMonthlyFirstDay != nil {
			sm.FirstDay = *p.SemiMonthlyFirstDay
		}
		if p.SemiMonthlySecondDay != nil {
			sm.SecondDay = *p.SemiMonthlySecondDay
		}
		s = sm
	case FrequencyMonthly:
		s = Monthly{Anchor: p.ReferenceDate}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, p.Frequency)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config is the inverse of PaydayConfig.Schedule.
func Config(s Schedule, reference time.Time) PaydayConfig {
	cfg := PaydayConfig{Frequency: s.Frequency(), ReferenceDate: reference}
	switch v := s.(type) {
	case Weekly:
		cfg.Weekday = &v.Weekday
	case Biweekly:
		cfg.Weekday = &v.Weekday
		cfg.ReferenceDate = v.Anchor
	case SemiMonthly:
		cfg.SemiMonthlyFirstDay = &v.FirstDay
		cfg.SemiMonthlySecondDay = &v.SecondDay
	case Monthly:
		cfg.ReferenceDate = v.Anchor
	}
	return cfg
}
