// Package assets provides the asset model: identity, fundamentals and price
// history for a single ticker, always fetched fresh from the quote source.
package assets

import (
	"context"
	"errors"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Service provides asset operations
type Service struct {
	quotes       domain.QuoteSource
	fundamentals domain.FundamentalsSource
	log          zerolog.Logger
}

// NewService creates a new assets service
func NewService(quotes domain.QuoteSource, fundamentals domain.FundamentalsSource, log zerolog.Logger) *Service {
	return &Service{
		quotes:       quotes,
		fundamentals: fundamentals,
		log:          log.With().Str("service", "assets").Logger(),
	}
}

// GetPriceSeries returns the ticker's bars over r. When the source has no
// data the series is empty and the returned note says why; this is never an
// error for the caller.
func (s *Service) GetPriceSeries(ctx context.Context, ticker string, r domain.DateRange) (domain.PriceSeries, *domain.CoverageNote) {
	ticker = domain.NormalizeTicker(ticker)

	series, err := s.quotes.Fetch(ctx, ticker, r)
	if err == nil {
		return series, nil
	}

	reason := domain.ReasonProviderUnavailable
	var noData *domain.NoDataError
	if errors.As(err, &noData) {
		reason = noData.Reason
	}

	s.log.Debug().Str("ticker", ticker).Str("reason", string(reason)).Msg("Asset contributes no prices")
	return domain.PriceSeries{}, &domain.CoverageNote{Ticker: ticker, Reason: reason}
}

// GetFundamentals returns the fundamental snapshot. Unknown symbols yield
// domain.ErrUnknownTicker.
func (s *Service) GetFundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	return s.fundamentals.Fundamentals(ctx, domain.NormalizeTicker(ticker))
}

// GetSector returns the ticker's sector, or domain.UnknownSector when the
// provider has none or cannot be reached
func (s *Service) GetSector(ctx context.Context, ticker string) string {
	f, err := s.GetFundamentals(ctx, ticker)
	if err != nil {
		s.log.Debug().Err(err).Str("ticker", ticker).Msg("Sector lookup failed")
		return domain.UnknownSector
	}
	if f.Sector == nil || *f.Sector == "" {
		return domain.UnknownSector
	}
	return *f.Sector
}

// Describe resolves the identity of a ticker. Unknown symbols yield
// domain.ErrUnknownTicker; a provider outage yields a bare identity with an
// unknown sector.
func (s *Service) Describe(ctx context.Context, ticker string) (domain.Asset, error) {
	ticker = domain.NormalizeTicker(ticker)
	asset := domain.Asset{Ticker: ticker, Name: ticker, Sector: domain.UnknownSector}

	f, err := s.GetFundamentals(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTicker) {
			return domain.Asset{}, err
		}
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Fundamentals unavailable, storing bare asset")
		return asset, nil
	}

	if f.Name != nil && *f.Name != "" {
		asset.Name = *f.Name
	}
	if f.Sector != nil && *f.Sector != "" {
		asset.Sector = *f.Sector
	}
	return asset, nil
}
