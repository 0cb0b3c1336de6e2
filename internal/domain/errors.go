package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is matched by every *NoDataError
	ErrNoData = errors.New("no data")
	// ErrDegenerateSeries is returned when a series cannot be normalized
	ErrDegenerateSeries = errors.New("degenerate series")
	// ErrUnknownTicker is returned for symbols the provider has never recognized
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrInvalidRange is returned for malformed or out-of-order date ranges
	ErrInvalidRange = errors.New("invalid range")

	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrHoldingNotFound   = errors.New("holding not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidName       = errors.New("invalid name")
)

// NoDataReason explains why a provider returned nothing
type NoDataReason string

const (
	ReasonUnknownSymbol       NoDataReason = "unknown_symbol"
	ReasonProviderUnavailable NoDataReason = "provider_unavailable"
	ReasonEmptyRange          NoDataReason = "empty_range"
	ReasonRateLimited         NoDataReason = "rate_limited"
)

// NoDataError signals that no prices are available for a ticker and range
type NoDataError struct {
	Ticker string
	Reason NoDataReason
	Err    error
}

func (e *NoDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no data for %s (%s): %v", e.Ticker, e.Reason, e.Err)
	}
	return fmt.Sprintf("no data for %s (%s)", e.Ticker, e.Reason)
}

func (e *NoDataError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNoData) hold for any NoDataError
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// DegenerateSeriesError names the series that could not be normalized
type DegenerateSeriesError struct {
	Series string // "portfolio", "benchmark", or a ticker
}

func (e *DegenerateSeriesError) Error() string {
	return fmt.Sprintf("%s series is empty or all zero", e.Series)
}

func (e *DegenerateSeriesError) Is(target error) bool {
	return target == ErrDegenerateSeries
}

// ErrorCode maps an error to the stable code reported to API clients
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrDegenerateSeries):
		return "degenerate_series"
	case errors.Is(err, ErrUnknownTicker):
		return "unknown_ticker"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrPortfolioNotFound):
		return "portfolio_not_found"
	case errors.Is(err, ErrHoldingNotFound):
		return "holding_not_found"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	default:
		return "internal"
	}
}
