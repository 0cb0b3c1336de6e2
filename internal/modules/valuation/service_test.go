package valuation

import (
	"context"
	"testing"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/analytics"
	"github.com/aristath/stockfolio/internal/modules/assets"
	"github.com/aristath/stockfolio/internal/modules/portfolio"
	testingpkg "github.com/aristath/stockfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(quotes *testingpkg.MockQuoteSource, portfolios ...*domain.Portfolio) *Service {
	prices := assets.NewService(quotes, testingpkg.NewMockFundamentalsSource(), zerolog.Nop())
	clock := fixedClock("2024-06-30")
	engine := NewEngine(prices, Config{Concurrency: 4, Clock: clock}, zerolog.Nop())
	return NewService(testingpkg.NewMockPortfolioReader(portfolios...), prices, engine, ServiceConfig{
		DefaultBenchmark: "IDX",
		Clock:            clock,
	}, zerolog.Nop())
}

func samplePortfolio() *domain.Portfolio {
	return &domain.Portfolio{
		ID:   "p1",
		Name: "Retirement",
		Holdings: []domain.Holding{
			testingpkg.NewHolding("AAA", 10, "2023-01-01", "Technology"),
			testingpkg.NewHolding("BBB", 4, "2024-06-01", "Energy"),
		},
	}
}

func TestService_ComputePortfolioValue(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAA", testingpkg.FlatSeries("2024-05-30", 5, 50))
	quotes.SetSeries("BBB", testingpkg.FlatSeries("2024-05-30", 5, 25))
	svc := newTestService(quotes, samplePortfolio())

	val, err := svc.ComputePortfolioValue(context.Background(), "p1", domain.DateRange{Start: "2024-05-30", End: "2024-06-03"})
	require.NoError(t, err)
	assert.Equal(t, []float64{500, 500, 600, 600, 600}, val.Series.Values())

	_, err = svc.ComputePortfolioValue(context.Background(), "nope", domain.DateRange{Start: "2024-05-30", End: "2024-06-03"})
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
}

func TestService_ComputeBenchmarkComparison_DefaultBenchmark(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAA", testingpkg.SeriesFromCloses("2024-06-01", []float64{10, 20}))
	quotes.SetSeries("IDX", testingpkg.SeriesFromCloses("2024-06-01", []float64{4000, 5000}))
	svc := newTestService(quotes, samplePortfolio())

	cmp, err := svc.ComputeBenchmarkComparison(context.Background(), "p1", "", domain.DateRange{Start: "2024-06-01", End: "2024-06-02"})
	require.NoError(t, err)

	assert.Equal(t, "IDX", cmp.Benchmark)
	assert.Equal(t, []float64{100, 200}, domain.ValueSeries(cmp.Portfolio).Values())
	assert.Equal(t, []float64{100, 125}, domain.ValueSeries(cmp.Index).Values())
	assert.Equal(t, []domain.CoverageNote{{Ticker: "BBB", Reason: domain.ReasonUnknownSymbol}}, cmp.Coverage)
}

func TestService_ComputeBenchmarkComparison_EmptyPortfolioIsDegenerate(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("IDX", testingpkg.FlatSeries("2024-06-01", 5, 4000))
	svc := newTestService(quotes, &domain.Portfolio{ID: "empty"})

	_, err := svc.ComputeBenchmarkComparison(context.Background(), "empty", "IDX", domain.DateRange{Start: "2024-06-01", End: "2024-06-05"})
	assert.ErrorIs(t, err, domain.ErrDegenerateSeries)
}

func TestService_ComputeAssetAnalytics(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAA", testingpkg.FlatSeries("2024-01-01", 30, 12))
	svc := newTestService(quotes)

	result, err := svc.ComputeAssetAnalytics(context.Background(), "aaa", domain.DateRange{Start: "2024-01-01", End: "2024-01-30"}, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "AAA", result.Ticker)
	assert.Equal(t, analytics.DefaultBollingerWindow, result.Window)
	assert.Equal(t, analytics.DefaultBollingerStdDev, result.StdDev)
	assert.Len(t, result.Series, 30)
	require.Len(t, result.Bands, 11)
	assert.Equal(t, "2024-01-20", result.Bands[0].Date)
	assert.Equal(t, 12.0, result.Bands[0].Upper)
	require.NotNil(t, result.Change)
	assert.Zero(t, result.Change.Absolute)
	assert.Empty(t, result.Coverage)
}

func TestService_ComputeAssetAnalytics_NoDataIsNotAnError(t *testing.T) {
	svc := newTestService(testingpkg.NewMockQuoteSource())

	result, err := svc.ComputeAssetAnalytics(context.Background(), "GONE", domain.DateRange{Start: "2024-01-01", End: "2024-01-30"}, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, result.Series)
	assert.Empty(t, result.Bands)
	assert.Nil(t, result.Change)
	require.Len(t, result.Coverage, 1)
}

func TestService_ComputeAssetAnalytics_Errors(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	svc := newTestService(quotes)

	_, err := svc.ComputeAssetAnalytics(context.Background(), "AAA", domain.DateRange{Start: "2024-02-01", End: "2024-01-01"}, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	assert.Zero(t, quotes.TotalCalls())

	_, err = svc.ComputeAssetAnalytics(context.Background(), "AAA", domain.DateRange{Start: "2024-01-01", End: "2024-02-01"}, 1, 2)
	assert.ErrorIs(t, err, analytics.ErrInvalidArgument)
}

func TestService_ComputeSectorDistribution(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAA", testingpkg.FlatSeries("2024-06-20", 10, 30))
	quotes.SetSeries("BBB", testingpkg.FlatSeries("2024-06-20", 10, 25))
	svc := newTestService(quotes, samplePortfolio())

	dist, err := svc.ComputeSectorDistribution(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-30", dist.AsOf)
	assert.InDelta(t, 400.0, dist.Total, 1e-9)
	assert.InDelta(t, 0.75, dist.Weights["Technology"], 1e-9)
	assert.InDelta(t, 0.25, dist.Weights["Energy"], 1e-9)

	// BBB was not held yet
	dist, err = svc.ComputeSectorDistribution(context.Background(), "p1", "2024-05-25")
	require.NoError(t, err)
	assert.Empty(t, dist.Weights)
	assert.Equal(t, 0, quotes.Calls("BBB"))

	_, err = svc.ComputeSectorDistribution(context.Background(), "p1", "not-a-date")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestService_ComputePortfolioSummary(t *testing.T) {
	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAA", domain.PriceSeries{
		{Date: "2023-06-30", Close: 40},
		{Date: "2024-06-28", Close: 50},
	})
	quotes.SetSeries("BBB", domain.PriceSeries{
		{Date: "2024-05-31", Close: 100},
		{Date: "2024-06-03", Close: 200},
		{Date: "2024-06-28", Close: 250},
	})
	svc := newTestService(quotes, samplePortfolio())

	summary, err := svc.ComputePortfolioSummary(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Retirement", summary.Name)
	assert.Equal(t, "2024-06-30", summary.AsOf)
	require.Len(t, summary.Holdings, 2)

	// BBB is worth more, so it comes first
	assert.Equal(t, "BBB", summary.Holdings[0].Ticker)
	assert.InDelta(t, 1000.0, summary.Holdings[0].Value, 1e-9)
	assert.InDelta(t, 200.0, summary.Holdings[0].YearChange, 1e-9)
	assert.Equal(t, "AAA", summary.Holdings[1].Ticker)
	assert.InDelta(t, 500.0, summary.Holdings[1].Value, 1e-9)
	assert.InDelta(t, 100.0, summary.Holdings[1].YearChange, 1e-9)

	assert.InDelta(t, 1500.0, summary.Total, 1e-9)
	assert.InDelta(t, 300.0, summary.YearChange, 1e-9)
	assert.Equal(t, "$1,500.00", summary.TotalDisplay)
	assert.Equal(t, "$1,000.00", summary.Holdings[0].ValueDisplay)
	assert.InDelta(t, 2.0/3.0, summary.Holdings[0].Weight, 1e-9)
}

func TestService_ComputePortfolioValue_LaterLotCountsFromItsOwnDate(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)

	name, sector := "Apple Inc.", "Technology"
	fundamentals := testingpkg.NewMockFundamentalsSource()
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "AAPL", Name: &name, Sector: &sector})

	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAPL", testingpkg.FlatSeries("2024-01-01", 182, 100))

	prices := assets.NewService(quotes, fundamentals, zerolog.Nop())
	clock := fixedClock("2024-06-30")
	portfolios := portfolio.NewService(portfolio.NewRepository(db.Conn(), zerolog.Nop()), prices, clock, zerolog.Nop())
	engine := NewEngine(prices, Config{Concurrency: 2, Clock: clock}, zerolog.Nop())
	svc := NewService(portfolios, prices, engine, ServiceConfig{DefaultBenchmark: "IDX", Clock: clock}, zerolog.Nop())

	ctx := context.Background()
	p, err := portfolios.CreatePortfolio(ctx, "Lots")
	require.NoError(t, err)
	_, err = portfolios.AddHolding(ctx, p.ID, "AAPL", decimal.NewFromInt(1), "2024-01-01")
	require.NoError(t, err)
	_, err = portfolios.AddHolding(ctx, p.ID, "AAPL", decimal.NewFromInt(9), "2024-06-01")
	require.NoError(t, err)

	val, err := svc.ComputePortfolioValue(ctx, p.ID, domain.DateRange{Start: "2024-03-01", End: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, val.Series.Values())

	val, err = svc.ComputePortfolioValue(ctx, p.ID, domain.DateRange{Start: "2024-05-31", End: "2024-06-01"})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 1000}, val.Series.Values())
	assert.Equal(t, 2, quotes.Calls("AAPL"), "one fetch per valuation for both lots")
}

func TestService_SectorsResolveHoldingsStoredWithoutSector(t *testing.T) {
	energy := "Energy"
	fundamentals := testingpkg.NewMockFundamentalsSource()
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "BBB", Sector: &energy})

	quotes := testingpkg.NewMockQuoteSource()
	quotes.SetSeries("AAA", testingpkg.FlatSeries("2024-06-20", 11, 10))
	quotes.SetSeries("BBB", testingpkg.FlatSeries("2024-06-20", 11, 30))

	stale := testingpkg.NewHolding("BBB", 1, "2024-01-01", domain.UnknownSector)
	p := &domain.Portfolio{ID: "p1", Holdings: []domain.Holding{
		testingpkg.NewHolding("AAA", 3, "2024-01-01", "Technology"),
		stale,
	}}

	prices := assets.NewService(quotes, fundamentals, zerolog.Nop())
	clock := fixedClock("2024-06-30")
	engine := NewEngine(prices, Config{Concurrency: 2, Clock: clock}, zerolog.Nop())
	svc := NewService(testingpkg.NewMockPortfolioReader(p), prices, engine, ServiceConfig{Clock: clock}, zerolog.Nop())

	dist, err := svc.ComputeSectorDistribution(context.Background(), "p1", "2024-06-28")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, dist.Weights["Energy"], 1e-12)
	assert.InDelta(t, 0.5, dist.Weights["Technology"], 1e-12)
	assert.NotContains(t, dist.Weights, domain.UnknownSector)

	summary, err := svc.ComputePortfolioSummary(context.Background(), "p1")
	require.NoError(t, err)
	sectors := map[string]string{}
	for _, line := range summary.Holdings {
		sectors[line.Ticker] = line.Sector
	}
	assert.Equal(t, map[string]string{"AAA": "Technology", "BBB": "Energy"}, sectors)

	assert.Equal(t, domain.UnknownSector, stale.Asset.Sector, "stored holding is not modified")
}
