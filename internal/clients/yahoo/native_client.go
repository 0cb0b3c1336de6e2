package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// NativeClient implements FullClientInterface using the go-yfinance library
type NativeClient struct {
	now func() time.Time
	log zerolog.Logger
}

// NewNativeClient creates a new native Yahoo Finance client
func NewNativeClient(log zerolog.Logger) *NativeClient {
	return &NativeClient{
		now: time.Now,
		log: log.With().Str("client", "yahoo-native").Logger(),
	}
}

// periodCovering picks the shortest Yahoo period that reaches back to start
func periodCovering(start, now time.Time) string {
	switch days := now.Sub(start).Hours() / 24; {
	case days <= 28:
		return "1mo"
	case days <= 88:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 364:
		return "1y"
	case days <= 729:
		return "2y"
	case days <= 1825:
		return "5y"
	case days <= 3650:
		return "10y"
	default:
		return "max"
	}
}

// GetHistoricalPrices fetches daily bars for a period covering start and
// keeps the ones dated within [start, end].
func (c *NativeClient) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]HistoricalPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	params := models.HistoryParams{
		Period:     periodCovering(start, c.now()),
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := t.History(params)
	if err != nil {
		return nil, classifyNativeError(fmt.Errorf("failed to get historical prices: %w", err))
	}

	first := start.Format("2006-01-02")
	last := end.Format("2006-01-02")

	historicalPrices := make([]HistoricalPrice, 0, len(bars))
	for _, bar := range bars {
		day := bar.Date.Format("2006-01-02")
		if day < first || day > last {
			continue
		}
		historicalPrices = append(historicalPrices, HistoricalPrice{
			Date:     bar.Date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			Volume:   int64(bar.Volume),
			AdjClose: bar.AdjClose,
		})
	}

	return historicalPrices, nil
}

// GetFundamentalData fetches the fundamental snapshot from the ticker info
func (c *NativeClient) GetFundamentalData(ctx context.Context, symbol string) (*FundamentalData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, classifyNativeError(fmt.Errorf("failed to get info: %w", err))
	}

	fundamental := &FundamentalData{
		Symbol:    symbol,
		LongName:  nonEmpty(info.LongName),
		ShortName: nonEmpty(info.ShortName),
		Sector:    nonEmpty(info.Sector),
		Industry:  nonEmpty(info.Industry),
		Summary:   nonEmpty(info.LongBusinessSummary),
	}

	// Copy values before taking addresses; the library may reuse buffers.
	// The info model reports absent ratios as zero.
	if info.TrailingPE != 0 {
		trailingPE := info.TrailingPE
		fundamental.PERatio = &trailingPE
	}
	if info.ForwardPE != 0 {
		forwardPE := info.ForwardPE
		fundamental.ForwardPE = &forwardPE
	}
	if info.Beta != 0 {
		beta := info.Beta
		fundamental.Beta = &beta
	}
	if info.DividendYield > 0 {
		dividendYield := info.DividendYield
		fundamental.DividendYield = &dividendYield
	}
	if info.MarketCap > 0 {
		marketCap := int64(info.MarketCap)
		fundamental.MarketCap = &marketCap
	}

	if fundamental.LongName == nil && fundamental.ShortName == nil && fundamental.MarketCap == nil {
		return nil, fmt.Errorf("no info returned for symbol %s: %w", symbol, ErrSymbolNotFound)
	}

	return fundamental, nil
}

// classifyNativeError maps library error text onto the package sentinels
func classifyNativeError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "delisted"), strings.Contains(msg, "404"):
		return fmt.Errorf("%w: %v", ErrSymbolNotFound, err)
	case strings.Contains(msg, "too many requests"), strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return err
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
