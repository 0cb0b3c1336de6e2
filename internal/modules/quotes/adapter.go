// Package quotes adapts the Yahoo clients to the domain quote contracts.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aristath/stockfolio/internal/clients/yahoo"
	"github.com/aristath/stockfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Adapter wraps a Yahoo client and implements domain.QuoteSource and
// domain.FundamentalsSource
type Adapter struct {
	client yahoo.FullClientInterface
	log    zerolog.Logger
}

// NewAdapter creates a new quote adapter
func NewAdapter(client yahoo.FullClientInterface, log zerolog.Logger) *Adapter {
	return &Adapter{
		client: client,
		log:    log.With().Str("service", "quotes").Logger(),
	}
}

// Fetch returns the ticker's daily bars within r, ascending with unique dates.
// Every failure is reported as a *domain.NoDataError.
func (a *Adapter) Fetch(ctx context.Context, ticker string, r domain.DateRange) (domain.PriceSeries, error) {
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, &domain.NoDataError{Ticker: ticker, Reason: domain.ReasonUnknownSymbol}
	}
	if err := r.Validate(); err != nil {
		return nil, &domain.NoDataError{Ticker: ticker, Reason: domain.ReasonEmptyRange, Err: err}
	}

	start, _ := domain.ParseDate(r.Start)
	end, _ := domain.ParseDate(r.End)

	prices, err := a.client.GetHistoricalPrices(ctx, ticker, start, end)
	if err != nil {
		noData := &domain.NoDataError{Ticker: ticker, Reason: classify(err), Err: err}
		a.log.Warn().
			Err(err).
			Str("ticker", ticker).
			Str("reason", string(noData.Reason)).
			Msg("No price data")
		return nil, noData
	}

	series := toSeries(prices, r)
	if len(series) == 0 {
		a.log.Debug().Str("ticker", ticker).Str("start", r.Start).Str("end", r.End).Msg("Empty price range")
		return nil, &domain.NoDataError{Ticker: ticker, Reason: domain.ReasonEmptyRange}
	}

	return series, nil
}

// Fundamentals returns the ticker's fundamental snapshot
func (a *Adapter) Fundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, domain.ErrUnknownTicker
	}

	data, err := a.client.GetFundamentalData(ctx, ticker)
	if err != nil {
		if errors.Is(err, yahoo.ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTicker, ticker)
		}
		return nil, fmt.Errorf("failed to get fundamentals for %s: %w", ticker, err)
	}

	name := data.LongName
	if name == nil {
		name = data.ShortName
	}

	return &domain.Fundamentals{
		Ticker:        ticker,
		Name:          name,
		Sector:        data.Sector,
		Industry:      data.Industry,
		Summary:       data.Summary,
		PERatio:       data.PERatio,
		ForwardPE:     data.ForwardPE,
		Beta:          data.Beta,
		DividendYield: data.DividendYield,
		MarketCap:     data.MarketCap,
	}, nil
}

func classify(err error) domain.NoDataReason {
	switch {
	case errors.Is(err, yahoo.ErrSymbolNotFound):
		return domain.ReasonUnknownSymbol
	case errors.Is(err, yahoo.ErrRateLimited):
		return domain.ReasonRateLimited
	default:
		return domain.ReasonProviderUnavailable
	}
}

// toSeries trims to the range, drops unusable closes, and de-duplicates by
// date keeping the last bar reported for a day.
func toSeries(prices []yahoo.HistoricalPrice, r domain.DateRange) domain.PriceSeries {
	byDate := make(map[string]domain.Bar, len(prices))
	for _, p := range prices {
		date := p.Date.Format(domain.DateFormat)
		if !r.Contains(date) {
			continue
		}
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		byDate[date] = domain.Bar{
			Date:   date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		}
	}

	series := make(domain.PriceSeries, 0, len(byDate))
	for _, bar := range byDate {
		series = append(series, bar)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	return series
}
