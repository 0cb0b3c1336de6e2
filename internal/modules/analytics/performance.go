package analytics

import (
	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/pkg/formulas"
)

// Change is the movement of a series between its first and last point
type Change struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Absolute float64  `json:"absolute"`
	Percent  *float64 `json:"percent"` // nil when Start is 0
}

// PeriodChange returns the change from the first to the last point, or nil
// for an empty series
func PeriodChange(series domain.ValueSeries) *Change {
	if len(series) == 0 {
		return nil
	}

	first, last := series[0], series[len(series)-1]
	change := &Change{
		From:     first.Date,
		To:       last.Date,
		Start:    first.Value,
		End:      last.Value,
		Absolute: last.Value - first.Value,
	}
	if first.Value != 0 {
		pct := change.Absolute / first.Value * 100
		change.Percent = &pct
	}
	return change
}

// AnnualizedVolatility returns the annualized standard deviation of daily
// returns, or 0 with fewer than three points
func AnnualizedVolatility(series domain.ValueSeries) float64 {
	return formulas.AnnualizedVolatility(formulas.CalculateReturns(series.Values()))
}
