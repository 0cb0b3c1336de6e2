package domain

import "context"

// QuoteSource returns daily bars for a ticker over an inclusive date range.
// The only error it returns is a *NoDataError; an unknown symbol or an
// unreachable provider is never reported any other way.
type QuoteSource interface {
	Fetch(ctx context.Context, ticker string, r DateRange) (PriceSeries, error)
}

// FundamentalsSource returns the current fundamental snapshot for a ticker.
// Symbols the provider does not recognize yield ErrUnknownTicker.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
}

// PortfolioReader gives read-only access to persisted portfolios.
// Holdings are returned in display order with their Asset populated.
type PortfolioReader interface {
	GetPortfolio(ctx context.Context, id string) (*Portfolio, error)
}
