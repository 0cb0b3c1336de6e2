// Package valuation reconstructs portfolio value curves from per-asset price
// series and compares them against a benchmark.
package valuation

import (
	"context"
	"fmt"
	"sort"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultBase is the value a normalized series starts at
const DefaultBase = 100.0

// PriceSeriesProvider returns an asset's bars over a range. An empty series
// with a note means the asset has no data; it is never an error.
type PriceSeriesProvider interface {
	GetPriceSeries(ctx context.Context, ticker string, r domain.DateRange) (domain.PriceSeries, *domain.CoverageNote)
}

// Config holds engine configuration
type Config struct {
	Concurrency int          // Max concurrent quote fetches
	Clock       domain.Clock // Source of "today"; nil means time.Now
}

// Engine combines holdings into value series
type Engine struct {
	prices      PriceSeriesProvider
	concurrency int
	clock       domain.Clock
	log         zerolog.Logger
}

// NewEngine creates a new valuation engine
func NewEngine(prices PriceSeriesProvider, cfg Config, log zerolog.Logger) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Engine{
		prices:      prices,
		concurrency: cfg.Concurrency,
		clock:       cfg.Clock,
		log:         log.With().Str("service", "valuation").Logger(),
	}
}

// Valuation is a portfolio value curve plus the assets that had no data
type Valuation struct {
	Series   domain.ValueSeries    `json:"series"`
	Coverage []domain.CoverageNote `json:"partial_coverage"`
}

// Comparison is a pair of growth curves rebased to the same start value
type Comparison struct {
	Benchmark string                  `json:"benchmark"`
	Portfolio domain.NormalizedSeries `json:"portfolio"`
	Index     domain.NormalizedSeries `json:"index"`
	Coverage  []domain.CoverageNote   `json:"partial_coverage"`
}

// Combine computes the total value of holdings on every date of the union
// calendar of their assets' bars within r.
//
// A holding contributes quantity × close from its acquisition date on. Gaps
// are forward-filled from the asset's most recent prior close; before an
// asset's first bar in the holding's window the contribution is zero. If no
// asset has any bar the calendar is every day of r, all valued at zero.
func (e *Engine) Combine(ctx context.Context, holdings []domain.Holding, r domain.DateRange) (*Valuation, error) {
	if err := e.validate(holdings, r); err != nil {
		return nil, err
	}

	bySymbol, coverage, err := e.FetchSeries(ctx, uniqueTickers(holdings), r)
	if err != nil {
		return nil, err
	}

	calendar := UnionCalendar(bySymbol)
	if len(calendar) == 0 {
		calendar = r.Days()
	}

	values := make([]float64, len(calendar))
	for _, h := range holdings {
		windowStart := r.Start
		if h.AcquiredOn > windowStart {
			windowStart = h.AcquiredOn
		}
		addContribution(values, calendar, bySymbol[domain.NormalizeTicker(h.Ticker)], windowStart, h.Quantity.InexactFloat64())
	}

	series := make(domain.ValueSeries, len(calendar))
	for i, date := range calendar {
		series[i] = domain.Point{Date: date, Value: values[i]}
	}

	e.log.Debug().
		Int("holdings", len(holdings)).
		Int("dates", len(series)).
		Int("missing", len(coverage)).
		Msg("Combined portfolio value")

	return &Valuation{Series: series, Coverage: coverage}, nil
}

// CompareToBenchmark fetches the benchmark over r, aligns it to the portfolio
// calendar with the same forward-fill rule, and normalizes both curves
// independently to DefaultBase.
func (e *Engine) CompareToBenchmark(ctx context.Context, portfolio domain.ValueSeries, benchmark string, r domain.DateRange) (*Comparison, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	benchmark = domain.NormalizeTicker(benchmark)

	normPortfolio, err := Normalize(portfolio, DefaultBase)
	if err != nil {
		return nil, &domain.DegenerateSeriesError{Series: "portfolio"}
	}

	bars, note := e.prices.GetPriceSeries(ctx, benchmark, r)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("benchmark fetch interrupted: %w", err)
	}

	aligned := Align(bars, portfolio.Dates())
	normIndex, err := Normalize(aligned, DefaultBase)
	if err != nil {
		return nil, &domain.DegenerateSeriesError{Series: "benchmark " + benchmark}
	}

	comparison := &Comparison{
		Benchmark: benchmark,
		Portfolio: normPortfolio,
		Index:     normIndex,
		Coverage:  []domain.CoverageNote{},
	}
	if note != nil {
		comparison.Coverage = append(comparison.Coverage, *note)
	}
	return comparison, nil
}

// FetchSeries fetches every ticker once, concurrently, and waits for all of
// them. Tickers without data map to an empty series and a coverage note. Only
// context cancellation is an error.
func (e *Engine) FetchSeries(ctx context.Context, tickers []string, r domain.DateRange) (map[string]domain.PriceSeries, []domain.CoverageNote, error) {
	results := make([]domain.PriceSeries, len(tickers))
	notes := make([]*domain.CoverageNote, len(tickers))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			results[i], notes[i] = e.prices.GetPriceSeries(ctx, ticker, r)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("price fetch interrupted: %w", err)
	}

	bySymbol := make(map[string]domain.PriceSeries, len(tickers))
	coverage := []domain.CoverageNote{}
	for i, ticker := range tickers {
		bySymbol[ticker] = results[i]
		if notes[i] != nil {
			coverage = append(coverage, *notes[i])
			e.log.Warn().
				Str("ticker", ticker).
				Str("reason", string(notes[i].Reason)).
				Msg("Asset has no data, contributing zero")
		}
	}

	return bySymbol, coverage, nil
}

// validate rejects bad ranges and future acquisitions before any fetch
func (e *Engine) validate(holdings []domain.Holding, r domain.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}

	today := e.clock.Today()
	for _, h := range holdings {
		if _, err := domain.ParseDate(h.AcquiredOn); err != nil {
			return fmt.Errorf("holding %s: %w", h.Ticker, err)
		}
		if h.AcquiredOn > today {
			return fmt.Errorf("%w: %s acquired on %s, after today %s", domain.ErrInvalidRange, h.Ticker, h.AcquiredOn, today)
		}
		if h.Quantity.IsNegative() {
			return fmt.Errorf("%w: %s has quantity %s", domain.ErrInvalidQuantity, h.Ticker, h.Quantity)
		}
	}
	return nil
}

// UnionCalendar returns every date present in any series, ascending, without duplicates
func UnionCalendar(series map[string]domain.PriceSeries) []string {
	seen := make(map[string]struct{})
	for _, s := range series {
		for _, bar := range s {
			seen[bar.Date] = struct{}{}
		}
	}

	calendar := make([]string, 0, len(seen))
	for date := range seen {
		calendar = append(calendar, date)
	}
	sort.Strings(calendar)
	return calendar
}

// Align maps bars onto calendar, forward-filling gaps from the most recent
// prior close. Dates before the first bar get zero.
func Align(bars domain.PriceSeries, calendar []string) domain.ValueSeries {
	out := make(domain.ValueSeries, len(calendar))
	values := make([]float64, len(calendar))
	addContribution(values, calendar, bars, "", 1)
	for i, date := range calendar {
		out[i] = domain.Point{Date: date, Value: values[i]}
	}
	return out
}

// addContribution adds quantity × forward-filled close to values for every
// calendar date on or after windowStart. Bars before windowStart are ignored.
func addContribution(values []float64, calendar []string, bars domain.PriceSeries, windowStart string, quantity float64) {
	j := sort.Search(len(bars), func(i int) bool { return bars[i].Date >= windowStart })

	var last float64
	have := false
	for i, date := range calendar {
		if date < windowStart {
			continue
		}
		for j < len(bars) && bars[j].Date <= date {
			last = bars[j].Close
			have = true
			j++
		}
		if have {
			values[i] += quantity * last
		}
	}
}

func uniqueTickers(holdings []domain.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		t := domain.NormalizeTicker(h.Ticker)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	return tickers
}
