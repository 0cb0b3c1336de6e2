package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// BollingerBands represents Bollinger Bands values
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Valid reports whether every band is a finite number
func (b BollingerBands) Valid() bool {
	return !isNaN(b.Upper) && !isNaN(b.Middle) && !isNaN(b.Lower)
}

// RollingBollingerBands calculates Bollinger Bands for every point that has a
// full trailing window.
//
//	Middle Band = length-day SMA
//	Upper Band = Middle + (stdDevMultiplier × population std deviation)
//	Lower Band = Middle - (stdDevMultiplier × population std deviation)
//
// The result always has len(closes)-length+1 entries; entry i covers
// closes[i : i+length]. Entries talib could not compute are kept and fail
// Valid. Nil is returned when there is not enough history.
func RollingBollingerBands(closes []float64, length int, stdDevMultiplier float64) []BollingerBands {
	if length < 2 || len(closes) < length {
		return nil
	}

	// talib keeps running sums of squares. Shifting by the first close keeps
	// them small for high-priced series; the deviation does not change.
	offset := closes[0]
	shifted := make([]float64, len(closes))
	for i, c := range closes {
		shifted[i] = c - offset
	}

	// MAType 0 = SMA
	upper, middle, lower := talib.BBands(shifted, length, stdDevMultiplier, stdDevMultiplier, 0)

	bands := make([]BollingerBands, 0, len(closes)-length+1)
	for i := length - 1; i < len(closes); i++ {
		b := BollingerBands{
			Upper:  upper[i] + offset,
			Middle: middle[i] + offset,
			Lower:  lower[i] + offset,
		}

		// A flat window has zero width regardless of rounding in the running sums
		if b.Valid() && isFlat(closes[i-length+1:i+1]) {
			b.Middle = closes[i]
			b.Upper = closes[i]
			b.Lower = closes[i]
		}

		bands = append(bands, b)
	}

	return bands
}

func isFlat(window []float64) bool {
	for _, v := range window[1:] {
		if v != window[0] {
			return false
		}
	}
	return true
}

func isNaN(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
