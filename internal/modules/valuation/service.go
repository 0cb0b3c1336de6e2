package valuation

import (
	"context"
	"fmt"
	"sort"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/analytics"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ServiceConfig holds the defaults applied when a request leaves them out
type ServiceConfig struct {
	DefaultBenchmark   string
	BollingerWindow    int
	BollingerStdDev    float64
	SectorLookbackDays int
	Clock              domain.Clock
}

// SectorResolver looks up a ticker's current sector
type SectorResolver interface {
	GetSector(ctx context.Context, ticker string) string
}

// Service is the entry point used by handlers and the CLI. Portfolios are
// read once per call and treated as a snapshot.
type Service struct {
	portfolios domain.PortfolioReader
	prices     PriceSeriesProvider
	sectors    SectorResolver // nil when prices cannot resolve sectors
	engine     *Engine
	cfg        ServiceConfig
	log        zerolog.Logger
}

// NewService creates a new valuation service. When prices also implements
// SectorResolver, holdings stored with an unknown sector are looked up again
// for sector distributions and summaries.
func NewService(portfolios domain.PortfolioReader, prices PriceSeriesProvider, engine *Engine, cfg ServiceConfig, log zerolog.Logger) *Service {
	if cfg.DefaultBenchmark == "" {
		cfg.DefaultBenchmark = "^GSPC"
	}
	if cfg.BollingerWindow == 0 {
		cfg.BollingerWindow = analytics.DefaultBollingerWindow
	}
	if cfg.BollingerStdDev == 0 {
		cfg.BollingerStdDev = analytics.DefaultBollingerStdDev
	}
	if cfg.SectorLookbackDays == 0 {
		cfg.SectorLookbackDays = analytics.DefaultSectorLookbackDays
	}
	sectors, _ := prices.(SectorResolver)
	return &Service{
		portfolios: portfolios,
		prices:     prices,
		sectors:    sectors,
		engine:     engine,
		cfg:        cfg,
		log:        log.With().Str("service", "valuation_api").Logger(),
	}
}

// resolveSectors returns holdings with unknown sectors filled in from the
// resolver, one lookup per ticker. The input and its assets are not modified.
func (s *Service) resolveSectors(ctx context.Context, holdings []domain.Holding) []domain.Holding {
	if s.sectors == nil {
		return holdings
	}

	resolved := make([]domain.Holding, len(holdings))
	looked := map[string]string{}
	for i, h := range holdings {
		resolved[i] = h
		if h.Sector() != domain.UnknownSector {
			continue
		}

		ticker := domain.NormalizeTicker(h.Ticker)
		sector, ok := looked[ticker]
		if !ok {
			sector = s.sectors.GetSector(ctx, ticker)
			looked[ticker] = sector
		}
		if sector == domain.UnknownSector {
			continue
		}

		asset := domain.Asset{Ticker: ticker, Name: ticker}
		if h.Asset != nil {
			asset = *h.Asset
		}
		asset.Sector = sector
		resolved[i].Asset = &asset
	}
	return resolved
}

// DefaultBenchmark returns the benchmark used when none is requested
func (s *Service) DefaultBenchmark() string {
	return s.cfg.DefaultBenchmark
}

// Today returns the service clock's current date
func (s *Service) Today() string {
	return s.cfg.Clock.Today()
}

// ComputePortfolioValue returns the portfolio's value curve over r
func (s *Service) ComputePortfolioValue(ctx context.Context, portfolioID string, r domain.DateRange) (*Valuation, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.engine.Combine(ctx, p.Holdings, r)
}

// ComputeBenchmarkComparison returns the portfolio and benchmark growth
// curves rebased to 100. An empty benchmark uses the configured default.
func (s *Service) ComputeBenchmarkComparison(ctx context.Context, portfolioID, benchmark string, r domain.DateRange) (*Comparison, error) {
	if benchmark == "" {
		benchmark = s.cfg.DefaultBenchmark
	}

	val, err := s.ComputePortfolioValue(ctx, portfolioID, r)
	if err != nil {
		return nil, err
	}

	cmp, err := s.engine.CompareToBenchmark(ctx, val.Series, benchmark, r)
	if err != nil {
		s.log.Info().Err(err).Str("portfolio", portfolioID).Str("benchmark", benchmark).Msg("Benchmark comparison failed")
		return nil, err
	}
	cmp.Coverage = append(val.Coverage, cmp.Coverage...)
	return cmp, nil
}

// AssetAnalytics is a single asset's close curve with its indicators
type AssetAnalytics struct {
	Ticker     string                `json:"ticker"`
	Range      domain.DateRange      `json:"range"`
	Series     domain.ValueSeries    `json:"series"`
	Bands      []domain.BandPoint    `json:"bollinger"`
	Window     int                   `json:"window"`
	StdDev     float64               `json:"k"`
	Change     *analytics.Change     `json:"change"`
	Volatility float64               `json:"annualized_volatility"`
	Coverage   []domain.CoverageNote `json:"partial_coverage"`
}

// ComputeAssetAnalytics returns the asset's closes over r with Bollinger
// Bands. Zero window or k use the configured defaults. An asset without data
// gets empty series and a coverage note.
func (s *Service) ComputeAssetAnalytics(ctx context.Context, ticker string, r domain.DateRange, window int, k float64) (*AssetAnalytics, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if window == 0 {
		window = s.cfg.BollingerWindow
	}
	if k == 0 {
		k = s.cfg.BollingerStdDev
	}

	ticker = domain.NormalizeTicker(ticker)
	bars, note := s.prices.GetPriceSeries(ctx, ticker, r)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("price fetch interrupted: %w", err)
	}

	bands, err := analytics.BollingerBands(bars, window, k)
	if err != nil {
		return nil, err
	}

	series := bars.ValueSeries()
	result := &AssetAnalytics{
		Ticker:     ticker,
		Range:      r,
		Series:     series,
		Bands:      bands,
		Window:     window,
		StdDev:     k,
		Change:     analytics.PeriodChange(series),
		Volatility: analytics.AnnualizedVolatility(series),
		Coverage:   []domain.CoverageNote{},
	}
	if note != nil {
		result.Coverage = append(result.Coverage, *note)
	}
	return result, nil
}

// ComputeSectorDistribution returns the portfolio's value split by sector on
// asOf (today when empty)
func (s *Service) ComputeSectorDistribution(ctx context.Context, portfolioID, asOf string) (*analytics.SectorDistribution, error) {
	if asOf == "" {
		asOf = s.cfg.Clock.Today()
	}
	r, err := analytics.SectorLookupRange(asOf, s.cfg.SectorLookbackDays)
	if err != nil {
		return nil, err
	}

	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	active := make([]domain.Holding, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		if h.ActiveOn(asOf) {
			active = append(active, h)
		}
	}

	prices, coverage, err := s.engine.FetchSeries(ctx, uniqueTickers(active), r)
	if err != nil {
		return nil, err
	}

	dist := analytics.SectorWeights(s.resolveSectors(ctx, active), asOf, prices)
	dist.Coverage = coverage
	return &dist, nil
}

// HoldingSummary is one line of a portfolio summary
type HoldingSummary struct {
	Ticker            string          `json:"ticker"`
	Name              string          `json:"name"`
	Sector            string          `json:"sector"`
	Quantity          decimal.Decimal `json:"quantity"`
	AcquiredOn        string          `json:"acquired_on"`
	Price             float64         `json:"price"`
	Value             float64         `json:"value"`
	Weight            float64         `json:"weight"`
	YearChange        float64         `json:"year_change"`
	ValueDisplay      string          `json:"value_display"`
	YearChangeDisplay string          `json:"year_change_display"`
}

// Summary is a portfolio snapshot: current holding values, largest first, and
// the dollar change over the last year
type Summary struct {
	PortfolioID       string                `json:"portfolio_id"`
	Name              string                `json:"name"`
	AsOf              string                `json:"as_of"`
	Holdings          []HoldingSummary      `json:"holdings"`
	Total             float64               `json:"total"`
	TotalDisplay      string                `json:"total_display"`
	YearChange        float64               `json:"year_change"`
	YearChangeDisplay string                `json:"year_change_display"`
	Coverage          []domain.CoverageNote `json:"partial_coverage"`
}

// ComputePortfolioSummary values every holding at its latest close. A
// holding's one-year change runs from its first close in the last year
// (or since acquisition, if later) to its latest close.
func (s *Service) ComputePortfolioSummary(ctx context.Context, portfolioID string) (*Summary, error) {
	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	today := s.cfg.Clock.Today()
	end, err := domain.ParseDate(today)
	if err != nil {
		return nil, err
	}
	r := domain.RangeEndingOn("1Y", end)

	prices, coverage, err := s.engine.FetchSeries(ctx, uniqueTickers(p.Holdings), r)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		PortfolioID: p.ID,
		Name:        p.Name,
		AsOf:        today,
		Holdings:    make([]HoldingSummary, 0, len(p.Holdings)),
		Coverage:    coverage,
	}

	for _, h := range s.resolveSectors(ctx, p.Holdings) {
		line := HoldingSummary{
			Ticker:     h.Ticker,
			Name:       h.Ticker,
			Sector:     h.Sector(),
			Quantity:   h.Quantity,
			AcquiredOn: h.AcquiredOn,
		}
		if h.Asset != nil && h.Asset.Name != "" {
			line.Name = h.Asset.Name
		}

		first, last, ok := closesSince(prices[domain.NormalizeTicker(h.Ticker)], h.AcquiredOn)
		if ok {
			qty := h.Quantity.InexactFloat64()
			line.Price = last
			line.Value = qty * last
			line.YearChange = qty * (last - first)
		}

		summary.Total += line.Value
		summary.YearChange += line.YearChange
		summary.Holdings = append(summary.Holdings, line)
	}

	sort.SliceStable(summary.Holdings, func(i, j int) bool {
		return summary.Holdings[i].Value > summary.Holdings[j].Value
	})
	for i := range summary.Holdings {
		line := &summary.Holdings[i]
		if summary.Total > 0 {
			line.Weight = line.Value / summary.Total
		}
		line.ValueDisplay = domain.FormatUSD(line.Value)
		line.YearChangeDisplay = domain.FormatUSD(line.YearChange)
	}
	summary.TotalDisplay = domain.FormatUSD(summary.Total)
	summary.YearChangeDisplay = domain.FormatUSD(summary.YearChange)

	return summary, nil
}

// closesSince returns the first and last closes dated on or after from
func closesSince(series domain.PriceSeries, from string) (first, last float64, ok bool) {
	i := sort.Search(len(series), func(i int) bool { return series[i].Date >= from })
	if i == len(series) {
		return 0, 0, false
	}
	return series[i].Close, series[len(series)-1].Close, true
}
