package valuation

import (
	"github.com/aristath/stockfolio/internal/modules/charts"
)

// Downsample keeps one point per interval (day, week or month), the last
// of each period
func (v *Valuation) Downsample(interval string) error {
	series, err := charts.Aggregate(v.Series, interval)
	if err != nil {
		return err
	}
	v.Series = series
	return nil
}

// Downsample applies the same interval to both curves, which share a
// calendar and so stay aligned
func (c *Comparison) Downsample(interval string) error {
	portfolio, err := charts.Aggregate(c.Portfolio, interval)
	if err != nil {
		return err
	}
	index, err := charts.Aggregate(c.Index, interval)
	if err != nil {
		return err
	}
	c.Portfolio, c.Index = portfolio, index
	return nil
}
