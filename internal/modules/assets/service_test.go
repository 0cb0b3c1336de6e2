package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/stockfolio/internal/domain"
	testingpkg "github.com/aristath/stockfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newService() (*Service, *testingpkg.MockQuoteSource, *testingpkg.MockFundamentalsSource) {
	quotes := testingpkg.NewMockQuoteSource()
	fundamentals := testingpkg.NewMockFundamentalsSource()
	return NewService(quotes, fundamentals, zerolog.Nop()), quotes, fundamentals
}

func TestGetPriceSeries(t *testing.T) {
	svc, quotes, _ := newService()
	quotes.SetSeries("AAPL", testingpkg.FlatSeries("2024-01-01", 5, 100))

	r := domain.DateRange{Start: "2024-01-02", End: "2024-01-03"}
	series, note := svc.GetPriceSeries(context.Background(), "aapl", r)

	assert.Nil(t, note)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01-02", series[0].Date)
}

func TestGetPriceSeries_NoDataIsEmptySeries(t *testing.T) {
	svc, quotes, _ := newService()
	quotes.SetError("DOWN", errors.New("socket closed"))

	r := domain.DateRange{Start: "2024-01-01", End: "2024-01-31"}

	series, note := svc.GetPriceSeries(context.Background(), "ZZZZ", r)
	assert.NotNil(t, series)
	assert.Empty(t, series)
	require.NotNil(t, note)
	assert.Equal(t, domain.ReasonUnknownSymbol, note.Reason)

	series, note = svc.GetPriceSeries(context.Background(), "DOWN", r)
	assert.Empty(t, series)
	require.NotNil(t, note)
	assert.Equal(t, domain.ReasonProviderUnavailable, note.Reason)
}

func TestGetSector(t *testing.T) {
	svc, _, fundamentals := newService()
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "MSFT", Sector: strPtr("Technology")})
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "SPY"})

	assert.Equal(t, "Technology", svc.GetSector(context.Background(), "MSFT"))
	assert.Equal(t, domain.UnknownSector, svc.GetSector(context.Background(), "SPY"))
	assert.Equal(t, domain.UnknownSector, svc.GetSector(context.Background(), "NOPE"))
}

func TestGetFundamentals_UnknownTicker(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.GetFundamentals(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrUnknownTicker)
}

func TestDescribe(t *testing.T) {
	svc, _, fundamentals := newService()
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "KO", Name: strPtr("Coca-Cola"), Sector: strPtr("Consumer Defensive")})

	asset, err := svc.Describe(context.Background(), "ko")
	require.NoError(t, err)
	assert.Equal(t, domain.Asset{Ticker: "KO", Name: "Coca-Cola", Sector: "Consumer Defensive"}, asset)

	_, err = svc.Describe(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrUnknownTicker)

	fundamentals.SetError(errors.New("provider down"))
	asset, err = svc.Describe(context.Background(), "KO")
	require.NoError(t, err)
	assert.Equal(t, domain.Asset{Ticker: "KO", Name: "KO", Sector: domain.UnknownSector}, asset)
}
