package query

import "time"

const (
	MinPollInterval = time.Second
	MaxPollInterval = 5 * time.Minute
)

// PollIntervals are the refresh cadences offered by the settings dialog.
var PollIntervals = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	time.Minute,
	2 * time.Minute,
	5 * time.Minute,
}

// Params is the active query selection for a device view. Values are never
// mutated in place; every change produces a new Params.
type Params struct {
	Start        time.Time
	End          time.Time
	Interval     Interval
	PollInterval time.Duration
}

// DefaultParams starts at the first day of the month containing now and ends
// at now, with realtime granularity.
func DefaultParams(now time.Time, poll time.Duration) Params {
	return Params{
		Start:        StartOfMonth(now),
		End:          now,
		Interval:     Realtime,
		PollInterval: poll,
	}
}

// StartOfMonth returns midnight of the first day of t's month in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Validate checks the selection rules and the poll cadence bounds.
func (p Params) Validate() error {
	if err := Validate(p.Start, p.End, p.Interval); err != nil {
		return err
	}
	return ValidatePollInterval(p.PollInterval)
}

// Apply commits candidate when it is valid. On failure the receiver is
// returned untouched together with the validation error.
func (p Params) Apply(candidate Params) (Params, error) {
	if candidate.PollInterval == 0 {
		candidate.PollInterval = p.PollInterval
	}
	if err := candidate.Validate(); err != nil {
		return p, err
	}
	return candidate, nil
}

// WithRange returns a copy of p with a new date range and interval.
func (p Params) WithRange(start, end time.Time, interval Interval) (Params, error) {
	next := p
	next.Start, next.End, next.Interval = start, end, interval
	return p.Apply(next)
}

// WithPollInterval returns a copy of p polling every d.
func (p Params) WithPollInterval(d time.Duration) (Params, error) {
	next := p
	next.PollInterval = d
	return p.Apply(next)
}

// Window resolves the time window to query. Missing dates on a realtime
// selection fall back to the current month up to now. A resolved start after
// the resolved end, such as a realtime start in the future, is rejected.
func (p Params) Window(now time.Time) (time.Time, time.Time, error) {
	start, end := p.Start, p.End
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = StartOfMonth(end)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvertedRange
	}
	return start, end, nil
}

// ValidatePollInterval bounds the refresh cadence. Zero means "use the
// configured default" and is accepted.
func ValidatePollInterval(d time.Duration) error {
	if d == 0 {
		return nil
	}
	if d < MinPollInterval || d > MaxPollInterval {
		return ErrPollOutOfBounds
	}
	return nil
}
