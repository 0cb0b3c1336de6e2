// Package domain provides core domain models and types.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownSector is reported for assets whose sector the provider does not know
const UnknownSector = "Unknown"

// Asset is one tradable instrument, keyed by ticker
type Asset struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// NormalizeTicker trims and upper-cases a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// SectorOrUnknown returns the asset sector, or UnknownSector when empty
func (a Asset) SectorOrUnknown() string {
	if strings.TrimSpace(a.Sector) == "" {
		return UnknownSector
	}
	return a.Sector
}

// Fundamentals is a point-in-time snapshot of an asset's fundamental data.
// Every field is optional: nil means the provider did not report it, zero is a real value.
type Fundamentals struct {
	Ticker        string   `json:"ticker"`
	Name          *string  `json:"name"`
	Sector        *string  `json:"sector"`
	Industry      *string  `json:"industry"`
	Summary       *string  `json:"summary"`
	PERatio       *float64 `json:"pe_ratio"`
	ForwardPE     *float64 `json:"forward_pe"`
	Beta          *float64 `json:"beta"`
	DividendYield *float64 `json:"dividend_yield"`
	MarketCap     *int64   `json:"market_cap"`
}

// Holding is a quantity of one asset held in a portfolio since AcquiredOn
type Holding struct {
	ID          int64           `json:"id"`
	PortfolioID string          `json:"portfolio_id"`
	Ticker      string          `json:"ticker"`
	Quantity    decimal.Decimal `json:"quantity"`
	AcquiredOn  string          `json:"acquired_on"` // YYYY-MM-DD
	Asset       *Asset          `json:"asset,omitempty"`
}

// ActiveOn reports whether the holding had been acquired by date (YYYY-MM-DD)
func (h Holding) ActiveOn(date string) bool {
	return h.AcquiredOn <= date
}

// Sector returns the holding's asset sector or UnknownSector
func (h Holding) Sector() string {
	if h.Asset == nil {
		return UnknownSector
	}
	return h.Asset.SectorOrUnknown()
}

// Portfolio is a named, ordered set of holdings
type Portfolio struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Holdings  []Holding `json:"holdings"`
}

// Bar is one daily OHLCV bar
type Bar struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceSeries is a date-ascending sequence of bars with unique dates
type PriceSeries []Bar

// Closes returns the close prices in order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// ValueSeries returns the close curve of the price series
func (s PriceSeries) ValueSeries() ValueSeries {
	out := make(ValueSeries, len(s))
	for i, b := range s {
		out[i] = Point{Date: b.Date, Value: b.Close}
	}
	return out
}

// Point is a single (date, value) observation
type Point struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// ValueSeries is a sequence of points with strictly ascending dates
type ValueSeries []Point

// Dates returns the series dates in order
func (s ValueSeries) Dates() []string {
	dates := make([]string, len(s))
	for i, p := range s {
		dates[i] = p.Date
	}
	return dates
}

// Values returns the series values in order
func (s ValueSeries) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// NormalizedSeries is a ValueSeries rebased so its first non-zero value equals the base
type NormalizedSeries []Point

// BandPoint is one Bollinger Bands observation
type BandPoint struct {
	Date   string  `json:"date"`
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// CoverageNote records an asset whose prices could not be fetched
type CoverageNote struct {
	Ticker string       `json:"ticker"`
	Reason NoDataReason `json:"reason"`
}
