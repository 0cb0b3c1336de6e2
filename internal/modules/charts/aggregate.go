// Package charts downsamples daily series for display.
package charts

import (
	"errors"
	"fmt"

	"github.com/aristath/stockfolio/internal/domain"
)

// Intervals accepted by Aggregate
const (
	Daily   = "day"
	Weekly  = "week"
	Monthly = "month"
)

// ErrUnknownInterval is returned for an interval other than day, week or month
var ErrUnknownInterval = errors.New("unknown interval")

// ParseInterval validates an interval name; empty means daily
func ParseInterval(s string) (string, error) {
	switch s {
	case "", Daily:
		return Daily, nil
	case Weekly, Monthly:
		return s, nil
	default:
		return "", fmt.Errorf("%w %q, want day, week or month", ErrUnknownInterval, s)
	}
}

// Aggregate keeps the last point of every ISO week or calendar month, so
// each kept point is the value at the period's close and keeps its real
// date. Daily returns the series unchanged. Points must be in date order.
func Aggregate(series []domain.Point, interval string) ([]domain.Point, error) {
	interval, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	if interval == Daily || len(series) == 0 {
		return series, nil
	}

	out := make([]domain.Point, 0, len(series)/4+1)
	current := ""
	for _, p := range series {
		period, err := periodOf(p.Date, interval)
		if err != nil {
			return nil, err
		}
		if period == current {
			out[len(out)-1] = p
			continue
		}
		current = period
		out = append(out, p)
	}
	return out, nil
}

// periodOf labels a date with its ISO week (YYYY-W##) or month (YYYY-MM)
func periodOf(date, interval string) (string, error) {
	t, err := domain.ParseDate(date)
	if err != nil {
		return "", err
	}
	if interval == Weekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), nil
	}
	return t.Format("2006-01"), nil
}
