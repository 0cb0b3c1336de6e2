package domain

import (
	"fmt"
	"time"
)

// DateFormat is the layout of every date string in the domain
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as UTC midnight
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidRange, s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// DateRange is an inclusive [Start, End] range of YYYY-MM-DD dates
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks both bounds parse and Start <= End
func (r DateRange) Validate() error {
	start, err := ParseDate(r.Start)
	if err != nil {
		return err
	}
	end, err := ParseDate(r.End)
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Contains reports whether date falls within the range
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// Days lists every calendar day in the range. The range must be valid.
func (r DateRange) Days() []string {
	start, err := ParseDate(r.Start)
	if err != nil {
		return nil
	}
	end, err := ParseDate(r.End)
	if err != nil {
		return nil
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDate(d))
	}
	return days
}

// RangeEndingOn builds a range from a period shorthand (1M, 3M, 6M, 1Y, 5Y, 10Y)
// ending on end. Unknown periods default to one year.
func RangeEndingOn(period string, end time.Time) DateRange {
	var start time.Time
	switch period {
	case "1M":
		start = end.AddDate(0, -1, 0)
	case "3M":
		start = end.AddDate(0, -3, 0)
	case "6M":
		start = end.AddDate(0, -6, 0)
	case "5Y":
		start = end.AddDate(-5, 0, 0)
	case "10Y":
		start = end.AddDate(-10, 0, 0)
	default:
		start = end.AddDate(-1, 0, 0)
	}
	return DateRange{Start: FormatDate(start), End: FormatDate(end)}
}

// ParseDateRange builds a validated range from optional bounds. A missing
// end is today; a missing start is derived from period ending on end.
func ParseDateRange(from, to, period, today string) (DateRange, error) {
	if to == "" {
		to = today
	}
	end, err := ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	if from == "" {
		from = RangeEndingOn(period, end).Start
	}

	dr := DateRange{Start: from, End: to}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Clock returns the current time; injected so "today" is testable
type Clock func() time.Time

// Today returns the clock's current date as YYYY-MM-DD
func (c Clock) Today() string {
	if c == nil {
		return FormatDate(time.Now())
	}
	return FormatDate(c())
}
