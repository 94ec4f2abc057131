package query

import (
	"math"
	"time"
)

// maxHourlySpanDays is the widest inclusive day span allowed with Hour.
const maxHourlySpanDays = 3

// ValidationError is a user-input problem with a range or interval selection.
// It is recoverable and shown inline next to the settings form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingDates        = &ValidationError{Message: "missing dates"}
	ErrInvertedRange       = &ValidationError{Message: "inverted range"}
	ErrRangeTooWide        = &ValidationError{Message: "range too wide for interval"}
	ErrPollOutOfBounds     = &ValidationError{Message: "poll interval out of bounds"}
	ErrUnsupportedInterval = &ValidationError{Message: "unsupported interval"}
)

// Validate decides whether a candidate (start, end, interval) triple may be
// applied. A zero time means the date was not picked.
func Validate(start, end time.Time, interval Interval) error {
	switch interval {
	case Realtime, Hour, Day, Week, Month:
	default:
		return ErrUnsupportedInterval
	}
	if start.IsZero() || end.IsZero() {
		if interval != Realtime {
			return ErrMissingDates
		}
		return nil
	}
	if start.After(end) {
		return ErrInvertedRange
	}
	if interval == Hour && DaySpan(start, end) > maxHourlySpanDays {
		return ErrRangeTooWide
	}
	return nil
}

// DaySpan counts the calendar days touched by [start, end], both ends
// included, using the location of start.
func DaySpan(start, end time.Time) int {
	loc := start.Location()
	end = end.In(loc)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	// rounding absorbs 23h and 25h days around DST changes
	return int(math.Round(to.Sub(from).Hours()/24)) + 1
}
