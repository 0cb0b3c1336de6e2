// Package yahoo provides Yahoo Finance clients for daily prices and fundamentals.
package yahoo

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSymbolNotFound is returned when Yahoo does not recognize the symbol
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrRateLimited is returned when Yahoo throttles the request
	ErrRateLimited = errors.New("rate limited")
)

// HistoricalPrice is one daily OHLCV bar as reported by Yahoo
type HistoricalPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// FundamentalData holds the fundamental fields used by the asset model.
// Nil pointers mean Yahoo did not report the field.
type FundamentalData struct {
	Symbol        string   `json:"symbol"`
	LongName      *string  `json:"long_name"`
	ShortName     *string  `json:"short_name"`
	Sector        *string  `json:"sector"`
	Industry      *string  `json:"industry"`
	Summary       *string  `json:"summary"`
	PERatio       *float64 `json:"pe_ratio"`
	ForwardPE     *float64 `json:"forward_pe"`
	Beta          *float64 `json:"beta"`
	DividendYield *float64 `json:"dividend_yield"`
	MarketCap     *int64   `json:"market_cap"`
}

// FullClientInterface is implemented by every Yahoo client
type FullClientInterface interface {
	// GetHistoricalPrices returns daily bars whose dates fall in [start, end]
	GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]HistoricalPrice, error)
	GetFundamentalData(ctx context.Context, symbol string) (*FundamentalData, error)
}
