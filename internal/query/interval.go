// Package query holds the date-range and interval selection that drives the
// chart panels, and the rules a selection must satisfy before it is applied.
package query

import (
	"fmt"
	"strings"
)

// Interval is the bucket granularity selected in the settings dialog.
type Interval string

const (
	Realtime Interval = "REALTIME"
	Hour     Interval = "HOUR"
	Day      Interval = "DAY"
	Week     Interval = "WEEK"
	Month    Interval = "MONTH"
)

// Intervals lists every selectable interval in display order.
var Intervals = []Interval{Realtime, Hour, Day, Week, Month}

// ParseInterval parses a case-insensitive interval name. An empty string
// selects Realtime.
func ParseInterval(s string) (Interval, error) {
	if s == "" {
		return Realtime, nil
	}
	in := Interval(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Intervals {
		if in == known {
			return in, nil
		}
	}
	return "", fmt.Errorf("unknown interval %q", s)
}

// APIType returns the interval_type sent to the telemetry API.
func (i Interval) APIType() string {
	if i == Realtime || i == "" {
		return "MINUTE"
	}
	return string(i)
}

func (i Interval) String() string {
	return string(i)
}
