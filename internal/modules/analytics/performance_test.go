package analytics

import (
	"testing"

	"github.com/aristath/stockfolio/internal/domain"
	testingpkg "github.com/aristath/stockfolio/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodChange(t *testing.T) {
	series := domain.ValueSeries{
		{Date: "2024-01-01", Value: 200},
		{Date: "2024-01-02", Value: 150},
		{Date: "2024-01-03", Value: 250},
	}

	change := PeriodChange(series)
	require.NotNil(t, change)
	assert.Equal(t, "2024-01-01", change.From)
	assert.Equal(t, "2024-01-03", change.To)
	assert.Equal(t, 50.0, change.Absolute)
	require.NotNil(t, change.Percent)
	assert.InDelta(t, 25.0, *change.Percent, 1e-9)
}

func TestPeriodChange_ZeroStartHasNoPercent(t *testing.T) {
	change := PeriodChange(domain.ValueSeries{{Date: "2024-01-01", Value: 0}, {Date: "2024-01-02", Value: 10}})
	require.NotNil(t, change)
	assert.Equal(t, 10.0, change.Absolute)
	assert.Nil(t, change.Percent)

	assert.Nil(t, PeriodChange(nil))
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Zero(t, AnnualizedVolatility(testingpkg.FlatSeries("2024-01-01", 30, 10).ValueSeries()))
	assert.Zero(t, AnnualizedVolatility(domain.ValueSeries{{Date: "2024-01-01", Value: 1}}))

	swings := testingpkg.SeriesFromCloses("2024-01-01", []float64{100, 110, 99, 108, 97}).ValueSeries()
	assert.Greater(t, AnnualizedVolatility(swings), 0.0)
}
