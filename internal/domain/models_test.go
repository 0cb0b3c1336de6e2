package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeTicker("  aapl "))
	assert.Equal(t, "^GSPC", NormalizeTicker("^gspc"))
}

func TestHoldingSector(t *testing.T) {
	assert.Equal(t, UnknownSector, Holding{}.Sector())
	assert.Equal(t, UnknownSector, Holding{Asset: &Asset{Ticker: "X"}}.Sector())
	assert.Equal(t, "Technology", Holding{Asset: &Asset{Sector: "Technology"}}.Sector())
}

func TestHoldingActiveOn(t *testing.T) {
	h := Holding{AcquiredOn: "2023-01-01"}
	assert.False(t, h.ActiveOn("2022-12-31"))
	assert.True(t, h.ActiveOn("2023-01-01"))
	assert.True(t, h.ActiveOn("2023-06-15"))
}

func TestDateRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"valid", DateRange{Start: "2023-01-01", End: "2023-01-31"}, false},
		{"single day", DateRange{Start: "2023-01-01", End: "2023-01-01"}, false},
		{"start after end", DateRange{Start: "2023-02-01", End: "2023-01-01"}, true},
		{"bad start", DateRange{Start: "01/01/2023", End: "2023-01-01"}, true},
		{"empty end", DateRange{Start: "2023-01-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDateRangeDays(t *testing.T) {
	days := DateRange{Start: "2024-02-27", End: "2024-03-02"}.Days()
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, days)
}

func TestRangeEndingOn(t *testing.T) {
	end := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, DateRange{Start: "2024-05-30", End: "2024-06-30"}, RangeEndingOn("1M", end))
	assert.Equal(t, DateRange{Start: "2023-06-30", End: "2024-06-30"}, RangeEndingOn("1Y", end))
	assert.Equal(t, DateRange{Start: "2023-06-30", End: "2024-06-30"}, RangeEndingOn("bogus", end))
	assert.Equal(t, DateRange{Start: "2014-06-30", End: "2024-06-30"}, RangeEndingOn("10Y", end))
}

func TestClockToday(t *testing.T) {
	clock := Clock(func() time.Time { return time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC) })
	assert.Equal(t, "2024-01-02", clock.Today())
	assert.NotEmpty(t, Clock(nil).Today())
}

func TestNoDataErrorMatching(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch failed: %w", &NoDataError{Ticker: "AAPL", Reason: ReasonProviderUnavailable, Err: cause})

	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, cause)

	var noData *NoDataError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, ReasonProviderUnavailable, noData.Reason)
	assert.Equal(t, "no_data", ErrorCode(err))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "degenerate_series", ErrorCode(&DegenerateSeriesError{Series: "benchmark"}))
	assert.Equal(t, "invalid_range", ErrorCode(fmt.Errorf("%w: x", ErrInvalidRange)))
	assert.Equal(t, "unknown_ticker", ErrorCode(ErrUnknownTicker))
	assert.Equal(t, "portfolio_not_found", ErrorCode(ErrPortfolioNotFound))
	assert.Equal(t, "invalid_name", ErrorCode(fmt.Errorf("%w: blank", ErrInvalidName)))
	assert.Equal(t, "internal", ErrorCode(errors.New("boom")))
}

func TestPriceSeriesConversions(t *testing.T) {
	s := PriceSeries{
		{Date: "2024-01-02", Close: 10},
		{Date: "2024-01-03", Close: 11},
	}

	assert.Equal(t, []float64{10, 11}, s.Closes())
	assert.Equal(t, ValueSeries{{Date: "2024-01-02", Value: 10}, {Date: "2024-01-03", Value: 11}}, s.ValueSeries())
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, s.ValueSeries().Dates())
}

func TestParseDateRange(t *testing.T) {
	dr, err := ParseDateRange("", "", "", "2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2023-06-30", End: "2024-06-30"}, dr)

	dr, err = ParseDateRange("", "2024-03-31", "3M", "2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2023-12-31", End: "2024-03-31"}, dr)

	dr, err = ParseDateRange("2024-01-01", "", "", "2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-30", dr.End)

	_, err = ParseDateRange("2024-07-01", "2024-06-30", "", "2024-06-30")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ParseDateRange("", "June", "", "2024-06-30")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
