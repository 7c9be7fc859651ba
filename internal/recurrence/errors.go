package recurrence

import "errors"

// Configuration errors returned by Schedule.Validate and the operations that
// call it.
var (
	ErrMissingWeekday        = errors.New("weekday is required for weekly and biweekly schedules")
	ErrInvalidWeekday        = errors.New("weekday must be between 1 (Sunday) and 7 (Saturday)")
	ErrInvalidSemiMonthlyDay = errors.New("semi-monthly day must be between 1 and 28")
	ErrSemiMonthlyOrder      = errors.New("semi-monthly first day must be before second day")
	ErrMissingReferenceDate  = errors.New("reference date is required")
	ErrAnchorWeekdayMismatch = errors.New("reference date does not fall on the configured weekday")
	ErrInvalidInterval       = errors.New("interval must be at least one day")
	ErrUnknownFrequency      = errors.New("unknown payday frequency")
	ErrUnknownRecurrence     = errors.New("unknown bill recurrence")
	ErrInvalidRange          = errors.New("range end is before range start")
)
