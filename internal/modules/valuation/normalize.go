package valuation

import (
	"math"

	"github.com/aristath/stockfolio/internal/domain"
)

// Normalize rebases series so its first non-zero value equals base
// (DefaultBase when base is not positive). Leading zeros stay zero. An empty
// or all-zero series returns domain.ErrDegenerateSeries.
func Normalize(series domain.ValueSeries, base float64) (domain.NormalizedSeries, error) {
	if base <= 0 {
		base = DefaultBase
	}

	first := 0.0
	for _, p := range series {
		if p.Value != 0 && !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			first = p.Value
			break
		}
	}
	if first == 0 {
		return nil, domain.ErrDegenerateSeries
	}

	out := make(domain.NormalizedSeries, len(series))
	for i, p := range series {
		v := p.Value
		if first != base {
			v = base * p.Value / first
		}
		out[i] = domain.Point{Date: p.Date, Value: v}
	}
	return out, nil
}
