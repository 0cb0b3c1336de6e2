// Package analytics derives indicators and distributions from price series.
// Everything here is pure: callers fetch the data and pass it in.
package analytics

import (
	"errors"
	"fmt"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/pkg/formulas"
)

// ErrInvalidArgument is returned for out-of-range indicator parameters
var ErrInvalidArgument = errors.New("invalid argument")

const (
	DefaultBollingerWindow = 20
	DefaultBollingerStdDev = 2.0
)

// BollingerBands returns one band point per close that has a full trailing
// window of window bars, so the first window-1 closes produce nothing. Each
// point carries the date of the last close in its window. Bands use the
// population standard deviation.
func BollingerBands(series domain.PriceSeries, window int, k float64) ([]domain.BandPoint, error) {
	if window < 2 {
		return nil, fmt.Errorf("%w: bollinger window must be at least 2, got %d", ErrInvalidArgument, window)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: bollinger multiplier must not be negative, got %g", ErrInvalidArgument, k)
	}

	bands := formulas.RollingBollingerBands(series.Closes(), window, k)
	points := make([]domain.BandPoint, 0, len(bands))
	for i, b := range bands {
		if !b.Valid() {
			continue
		}
		points = append(points, domain.BandPoint{
			Date:   series[i+window-1].Date,
			Upper:  b.Upper,
			Middle: b.Middle,
			Lower:  b.Lower,
		})
	}
	return points, nil
}
