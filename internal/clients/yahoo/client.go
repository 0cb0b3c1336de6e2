package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client is a Yahoo Finance API client over the chart and quote endpoints
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// WithBaseURL points the client at a different host (used by tests)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// yahooQuoteResponse represents the response from Yahoo Finance quote API
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// yahooChartResponse represents the response from Yahoo Finance chart API
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetFundamentalData fetches the fundamental snapshot from the quote endpoint
func (c *Client) GetFundamentalData(ctx context.Context, symbol string) (*FundamentalData, error) {
	info, err := c.getQuoteInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote info: %w", err)
	}

	return &FundamentalData{
		Symbol:        symbol,
		LongName:      getStringPtr(info, "longName"),
		ShortName:     getStringPtr(info, "shortName"),
		Sector:        getStringPtr(info, "sector"),
		Industry:      getStringPtr(info, "industry"),
		Summary:       getStringPtr(info, "longBusinessSummary"),
		PERatio:       getFloat64(info, "trailingPE"),
		ForwardPE:     getFloat64(info, "forwardPE"),
		Beta:          getFloat64(info, "beta"),
		DividendYield: getFloat64(info, "dividendYield"),
		MarketCap:     getInt64(info, "marketCap"),
	}, nil
}

// getQuoteInfo fetches quote information from Yahoo Finance API
func (c *Client) getQuoteInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,longName,shortName,sector,industry,longBusinessSummary,"+
		"trailingPE,forwardPE,beta,dividendYield,marketCap")

	body, err := c.get(ctx, c.baseURL+"/v7/finance/quote?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result yahooQuoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s: %w", symbol, ErrSymbolNotFound)
	}

	return result.QuoteResponse.Result[0], nil
}

// GetHistoricalPrices fetches daily OHLCV bars from the chart endpoint.
// Bars are dated in the exchange's local calendar.
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]HistoricalPrice, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", strconv.FormatInt(start.Unix(), 10))
	// period2 is exclusive; extend by one day so end is included
	params.Add("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Add("events", "history")

	body, err := c.get(ctx, c.baseURL+"/v8/finance/chart/"+url.PathEscape(symbol)+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result yahooChartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		if result.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%s: %w", result.Chart.Error.Description, ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("Yahoo Finance API error: %s: %s", result.Chart.Error.Code, result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return []HistoricalPrice{}, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in response")
		return []HistoricalPrice{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	var adjCloseData []float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloseData = chartData.Indicators.AdjClose[0].AdjClose
	}

	prices := make([]HistoricalPrice, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}

		// Yahoo reports nulls for halted sessions
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		adjClose := quote.Close[i]
		if i < len(adjCloseData) && adjCloseData[i] != 0 {
			adjClose = adjCloseData[i]
		}

		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		prices = append(prices, HistoricalPrice{
			Date:     time.Unix(ts+chartData.Meta.GMTOffset, 0).UTC(),
			Open:     quote.Open[i],
			High:     quote.High[i],
			Low:      quote.Low[i],
			Close:    quote.Close[i],
			Volume:   volume,
			AdjClose: adjClose,
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Time("start", start).
		Time("end", end).
		Int("count", len(prices)).
		Msg("Fetched historical prices")

	return prices, nil
}

// get performs a GET request with browser headers and maps Yahoo status codes
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("Yahoo Finance returned 404 for %s: %w", req.URL.Path, ErrSymbolNotFound)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("Yahoo Finance returned 429: %w", ErrRateLimited)
	default:
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// Helper functions to safely extract values from map

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func getInt64(m map[string]interface{}, key string) *int64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			i := int64(v)
			return &i
		case int:
			i := int64(v)
			return &i
		case int64:
			return &v
		}
	}
	return nil
}

func getStringPtr(m map[string]interface{}, key string) *string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}
