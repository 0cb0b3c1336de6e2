package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// popMeanStd is the exact two-pass population mean and std dev
func popMeanStd(window []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(window, nil)
	return mean, math.Sqrt(variance)
}

func TestRollingBollingerBands_ConstantSeriesCollapses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}

	bands := RollingBollingerBands(closes, 20, 2)
	require.Len(t, bands, 11)

	for i, b := range bands {
		assert.Equal(t, b.Upper, b.Lower, "point %d", i)
		assert.Equal(t, b.Middle, b.Upper, "point %d", i)
		assert.InDelta(t, 50.0, b.Middle, 1e-9, "point %d", i)
	}
}

func TestRollingBollingerBands_InsufficientHistory(t *testing.T) {
	assert.Nil(t, RollingBollingerBands([]float64{1, 2, 3}, 20, 2))
	assert.Nil(t, RollingBollingerBands([]float64{1, 2, 3}, 1, 2))
	assert.Nil(t, RollingBollingerBands(nil, 20, 2))
}

func TestRollingBollingerBands_MatchesPopulationStdDev(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19}

	bands := RollingBollingerBands(closes, 5, 2)
	require.Len(t, bands, 6)

	for i, b := range bands {
		mean, std := popMeanStd(closes[i : i+5])

		assert.InDelta(t, mean, b.Middle, 1e-9)
		assert.InDelta(t, mean+2*std, b.Upper, 1e-9)
		assert.InDelta(t, mean-2*std, b.Lower, 1e-9)
		assert.GreaterOrEqual(t, b.Upper, b.Middle)
		assert.LessOrEqual(t, b.Lower, b.Middle)
	}
}

func TestRollingBollingerBands_HighPricedSeriesStaysPrecise(t *testing.T) {
	steps := []float64{0.5, -0.25, 1, 0.75, -1.5, 0.25, 2, -0.5, 0, 1.25}
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 50000 + steps[i%len(steps)] + float64(i)*0.01
	}

	bands := RollingBollingerBands(closes, 20, 2)
	require.Len(t, bands, 181)

	for i, b := range bands {
		mean, std := popMeanStd(closes[i : i+20])
		assert.InDelta(t, mean, b.Middle, 1e-9, "point %d", i)
		assert.InDelta(t, mean+2*std, b.Upper, 1e-9, "point %d", i)
		assert.InDelta(t, mean-2*std, b.Lower, 1e-9, "point %d", i)
	}
}

func TestRollingBollingerBands_KeepsOneEntryPerWindow(t *testing.T) {
	closes := []float64{1, 2, 3, math.NaN(), 5, 6}

	bands := RollingBollingerBands(closes, 2, 1)
	require.Len(t, bands, 5)

	assert.True(t, bands[0].Valid())
	assert.InDelta(t, 1.5, bands[0].Middle, 1e-9)
	assert.True(t, bands[1].Valid())
	assert.InDelta(t, 2.5, bands[1].Middle, 1e-9)
	assert.False(t, bands[2].Valid())
}
