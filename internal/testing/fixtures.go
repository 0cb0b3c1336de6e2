package testing

import (
	"github.com/aristath/stockfolio/internal/domain"
	"github.com/shopspring/decimal"
)

// FlatSeries returns one bar per calendar day from start (inclusive) for days
// days, every close equal to price
func FlatSeries(start string, days int, price float64) domain.PriceSeries {
	return SeriesFromCloses(start, repeat(price, days))
}

// SeriesFromCloses returns one bar per consecutive calendar day from start
func SeriesFromCloses(start string, closes []float64) domain.PriceSeries {
	first, err := domain.ParseDate(start)
	if err != nil {
		panic(err)
	}

	series := make(domain.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = domain.Bar{
			Date:   domain.FormatDate(first.AddDate(0, 0, i)),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return series
}

// SeriesOnDates returns bars on exactly the given dates, every close equal to price
func SeriesOnDates(price float64, dates ...string) domain.PriceSeries {
	series := make(domain.PriceSeries, len(dates))
	for i, d := range dates {
		series[i] = domain.Bar{Date: d, Open: price, High: price, Low: price, Close: price}
	}
	return series
}

// NewHolding builds a holding with its asset populated
func NewHolding(ticker string, quantity float64, acquiredOn string, sector string) domain.Holding {
	ticker = domain.NormalizeTicker(ticker)
	return domain.Holding{
		Ticker:     ticker,
		Quantity:   decimal.NewFromFloat(quantity),
		AcquiredOn: acquiredOn,
		Asset:      &domain.Asset{Ticker: ticker, Name: ticker, Sector: sector},
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
