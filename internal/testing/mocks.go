package testing

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/stockfolio/internal/clients/yahoo"
	"github.com/aristath/stockfolio/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockQuoteSource is an in-memory domain.QuoteSource. Tickers without a
// series yield NoData with ReasonUnknownSymbol.
type MockQuoteSource struct {
	mu     sync.RWMutex
	series map[string]domain.PriceSeries
	errs   map[string]error
	calls  map[string]int
}

// NewMockQuoteSource creates a new mock quote source
func NewMockQuoteSource() *MockQuoteSource {
	return &MockQuoteSource{
		series: make(map[string]domain.PriceSeries),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetSeries sets the bars returned for a ticker
func (m *MockQuoteSource) SetSeries(ticker string, series domain.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[domain.NormalizeTicker(ticker)] = series
}

// SetError makes Fetch fail for a ticker
func (m *MockQuoteSource) SetError(ticker string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[domain.NormalizeTicker(ticker)] = err
}

// Calls returns how many times a ticker was fetched
func (m *MockQuoteSource) Calls(ticker string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[domain.NormalizeTicker(ticker)]
}

// TotalCalls returns the number of Fetch calls across all tickers
func (m *MockQuoteSource) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Fetch returns the configured bars that fall within r
func (m *MockQuoteSource) Fetch(ctx context.Context, ticker string, r domain.DateRange) (domain.PriceSeries, error) {
	ticker = domain.NormalizeTicker(ticker)

	m.mu.Lock()
	m.calls[ticker]++
	series, ok := m.series[ticker]
	err := m.errs[ticker]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.NoDataError{Ticker: ticker, Reason: domain.ReasonUnknownSymbol}
	}

	out := make(domain.PriceSeries, 0, len(series))
	for _, bar := range series {
		if r.Contains(bar.Date) {
			out = append(out, bar)
		}
	}
	if len(out) == 0 {
		return nil, &domain.NoDataError{Ticker: ticker, Reason: domain.ReasonEmptyRange}
	}
	return out, nil
}

// MockFundamentalsSource is an in-memory domain.FundamentalsSource
type MockFundamentalsSource struct {
	mu   sync.RWMutex
	data map[string]*domain.Fundamentals
	err  error
}

// NewMockFundamentalsSource creates a new mock fundamentals source
func NewMockFundamentalsSource() *MockFundamentalsSource {
	return &MockFundamentalsSource{data: make(map[string]*domain.Fundamentals)}
}

// SetFundamentals sets the snapshot returned for a ticker
func (m *MockFundamentalsSource) SetFundamentals(f *domain.Fundamentals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[domain.NormalizeTicker(f.Ticker)] = f
}

// SetError makes every call fail
func (m *MockFundamentalsSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Fundamentals returns the configured snapshot or ErrUnknownTicker
func (m *MockFundamentalsSource) Fundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	f, ok := m.data[domain.NormalizeTicker(ticker)]
	if !ok {
		return nil, domain.ErrUnknownTicker
	}
	return f, nil
}

// MockPortfolioReader is an in-memory domain.PortfolioReader
type MockPortfolioReader struct {
	mu         sync.RWMutex
	portfolios map[string]*domain.Portfolio
}

// NewMockPortfolioReader creates a reader serving the given portfolios
func NewMockPortfolioReader(portfolios ...*domain.Portfolio) *MockPortfolioReader {
	m := &MockPortfolioReader{portfolios: make(map[string]*domain.Portfolio)}
	for _, p := range portfolios {
		m.portfolios[p.ID] = p
	}
	return m
}

// GetPortfolio returns the portfolio or ErrPortfolioNotFound
func (m *MockPortfolioReader) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.portfolios[id]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	return p, nil
}

// MockYahooClient is a testify mock of yahoo.FullClientInterface
type MockYahooClient struct {
	mock.Mock
}

var _ yahoo.FullClientInterface = (*MockYahooClient)(nil)

// GetHistoricalPrices mocks the chart call
func (m *MockYahooClient) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.HistoricalPrice, error) {
	args := m.Called(ctx, symbol, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]yahoo.HistoricalPrice), args.Error(1)
}

// GetFundamentalData mocks the quote call
func (m *MockYahooClient) GetFundamentalData(ctx context.Context, symbol string) (*yahoo.FundamentalData, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*yahoo.FundamentalData), args.Error(1)
}
