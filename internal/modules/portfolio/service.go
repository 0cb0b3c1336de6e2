package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AssetDescriber resolves a ticker to its identity and sector
type AssetDescriber interface {
	Describe(ctx context.Context, ticker string) (domain.Asset, error)
}

// Service enforces holding rules on top of the repository
type Service struct {
	repo   *Repository
	assets AssetDescriber
	clock  domain.Clock
	log    zerolog.Logger
}

var _ domain.PortfolioReader = (*Service)(nil)

// NewService creates a new portfolio service
func NewService(repo *Repository, assets AssetDescriber, clock domain.Clock, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		assets: assets,
		clock:  clock,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// CreatePortfolio creates an empty portfolio
func (s *Service) CreatePortfolio(ctx context.Context, name string) (*domain.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: portfolio name is required", domain.ErrInvalidName)
	}

	p := &domain.Portfolio{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Holdings:  []domain.Holding{},
	}
	if err := s.repo.CreatePortfolio(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info().Str("portfolio", p.ID).Str("name", p.Name).Msg("Portfolio created")
	return p, nil
}

// ListPortfolios returns every portfolio without holdings
func (s *Service) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	return s.repo.ListPortfolios(ctx)
}

// GetPortfolio returns a portfolio with its holdings
func (s *Service) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	return s.repo.GetPortfolio(ctx, id)
}

// DeletePortfolio removes a portfolio and all its holdings
func (s *Service) DeletePortfolio(ctx context.Context, id string) error {
	if err := s.repo.DeletePortfolio(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("portfolio", id).Msg("Portfolio deleted")
	return nil
}

// AddHolding buys quantity of ticker on acquiredOn (today when empty) as a
// new lot. Quantity must be positive and the date must not be in the future.
// The ticker must be known to the quote provider.
func (s *Service) AddHolding(ctx context.Context, portfolioID, ticker string, quantity decimal.Decimal, acquiredOn string) (*domain.Holding, error) {
	ticker = domain.NormalizeTicker(ticker)
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", domain.ErrInvalidQuantity, quantity)
	}

	today := s.clock.Today()
	if acquiredOn == "" {
		acquiredOn = today
	}
	if _, err := domain.ParseDate(acquiredOn); err != nil {
		return nil, err
	}
	if acquiredOn > today {
		return nil, fmt.Errorf("%w: acquisition date %s is after today %s", domain.ErrInvalidRange, acquiredOn, today)
	}

	asset, err := s.assets.Describe(ctx, ticker)
	if err != nil {
		return nil, err
	}

	return s.repo.AddHolding(ctx, portfolioID, asset, quantity, acquiredOn)
}

// SellHolding decreases a holding, latest lot first; selling everything removes it
func (s *Service) SellHolding(ctx context.Context, portfolioID, ticker string, quantity decimal.Decimal) (*domain.Holding, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", domain.ErrInvalidQuantity, quantity)
	}
	return s.repo.SellHolding(ctx, portfolioID, domain.NormalizeTicker(ticker), quantity)
}

// RemoveHolding deletes every lot of ticker
func (s *Service) RemoveHolding(ctx context.Context, portfolioID, ticker string) error {
	return s.repo.RemoveHolding(ctx, portfolioID, domain.NormalizeTicker(ticker))
}
