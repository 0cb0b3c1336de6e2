// Package portfolio stores portfolios and their holdings.
package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/stockfolio/internal/database"
	"github.com/aristath/stockfolio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository handles portfolio database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// CreatePortfolio inserts a portfolio without holdings
func (r *Repository) CreatePortfolio(ctx context.Context, p *domain.Portfolio) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// ListPortfolios returns every portfolio, oldest first, without holdings
func (r *Repository) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM portfolios ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []domain.Portfolio{}
	for rows.Next() {
		var p domain.Portfolio
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		p.Holdings = []domain.Holding{}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return portfolios, nil
}

// GetPortfolio returns the portfolio with its holdings in display order.
// Missing portfolios yield domain.ErrPortfolioNotFound.
func (r *Repository) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM portfolios WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := r.db.QueryContext(ctx, holdingColumns+` WHERE h.portfolio_id = ? ORDER BY h.position, h.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	p.Holdings = []domain.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		p.Holdings = append(p.Holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return &p, nil
}

// DeletePortfolio removes a portfolio and its holdings
func (r *Repository) DeletePortfolio(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}
	return nil
}

// AddHolding records quantity of asset bought on acquiredOn as its own lot.
// A lot of the same ticker bought on the same date is topped up instead. The
// asset row is created or refreshed. The returned holding is the lot.
func (r *Repository) AddHolding(ctx context.Context, portfolioID string, asset domain.Asset, quantity decimal.Decimal, acquiredOn string) (*domain.Holding, error) {
	var holding *domain.Holding

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if err := portfolioExists(ctx, tx, portfolioID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO assets (ticker, name, sector, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(ticker) DO UPDATE SET name = excluded.name, sector = excluded.sector, updated_at = excluded.updated_at`,
			asset.Ticker, asset.Name, asset.SectorOrUnknown(), time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert asset %s: %w", asset.Ticker, err)
		}

		lots, err := listLots(ctx, tx, portfolioID, asset.Ticker)
		if err != nil {
			return err
		}

		var lotID int64
		for _, lot := range lots {
			if lot.AcquiredOn == acquiredOn {
				lotID = lot.ID
				_, err = tx.ExecContext(ctx,
					`UPDATE holdings SET quantity = ? WHERE id = ?`,
					lot.Quantity.Add(quantity).String(), lot.ID,
				)
				if err != nil {
					return fmt.Errorf("failed to update holding: %w", err)
				}
				break
			}
		}

		if lotID == 0 {
			result, err := tx.ExecContext(ctx,
				`INSERT INTO holdings (portfolio_id, ticker, quantity, acquired_on, position)
				VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM holdings WHERE portfolio_id = ?))`,
				portfolioID, asset.Ticker, quantity.String(), acquiredOn, portfolioID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert holding: %w", err)
			}
			if lotID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to read holding id: %w", err)
			}
		}

		holding, err = getHolding(ctx, tx, lotID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("portfolio", portfolioID).
		Str("ticker", asset.Ticker).
		Str("acquired_on", acquiredOn).
		Str("quantity", holding.Quantity.String()).
		Msg("Holding added")
	return holding, nil
}

// SellHolding decreases the holdings of ticker by quantity, taking from the
// most recently acquired lot first. Selling more than is held across all lots
// yields domain.ErrInvalidQuantity; lots sold down to zero are removed. The
// returned holding carries the remaining quantity and the earliest remaining
// acquisition date.
func (r *Repository) SellHolding(ctx context.Context, portfolioID, ticker string, quantity decimal.Decimal) (*domain.Holding, error) {
	var holding *domain.Holding

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		lots, err := listLots(ctx, tx, portfolioID, ticker)
		if err != nil {
			return err
		}
		if len(lots) == 0 {
			return fmt.Errorf("%w: %s in %s", domain.ErrHoldingNotFound, ticker, portfolioID)
		}

		held := decimal.Zero
		for _, lot := range lots {
			held = held.Add(lot.Quantity)
		}
		if quantity.GreaterThan(held) {
			return fmt.Errorf("%w: cannot sell %s %s, only %s held", domain.ErrInvalidQuantity, quantity, ticker, held)
		}

		left := quantity
		for i := range lots {
			if !left.IsPositive() {
				break
			}
			lot := &lots[i]
			taken := decimal.Min(left, lot.Quantity)
			lot.Quantity = lot.Quantity.Sub(taken)
			left = left.Sub(taken)

			if lot.Quantity.IsZero() {
				_, err = tx.ExecContext(ctx, `DELETE FROM holdings WHERE id = ?`, lot.ID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE holdings SET quantity = ? WHERE id = ?`, lot.Quantity.String(), lot.ID)
			}
			if err != nil {
				return fmt.Errorf("failed to update holding: %w", err)
			}
		}

		holding = remainingHolding(lots)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return holding, nil
}

// RemoveHolding deletes every lot of ticker regardless of quantity
func (r *Repository) RemoveHolding(ctx context.Context, portfolioID, ticker string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM holdings WHERE portfolio_id = ? AND ticker = ?`, portfolioID, ticker,
	)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s in %s", domain.ErrHoldingNotFound, ticker, portfolioID)
	}
	return nil
}

// remainingHolding folds lots (latest first) into one holding. With nothing
// left it keeps the earliest lot's identity and a zero quantity.
func remainingHolding(lots []domain.Holding) *domain.Holding {
	total := decimal.Zero
	earliest := lots[len(lots)-1]
	for i := len(lots) - 1; i >= 0; i-- {
		if lots[i].Quantity.IsPositive() {
			earliest = lots[i]
			break
		}
	}
	for _, lot := range lots {
		total = total.Add(lot.Quantity)
	}

	h := earliest
	h.Quantity = total
	return &h
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(row rowScanner) (domain.Holding, error) {
	var h domain.Holding
	var quantity, name, sector string
	if err := row.Scan(&h.ID, &h.PortfolioID, &h.Ticker, &quantity, &h.AcquiredOn, &name, &sector); err != nil {
		return h, err
	}

	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return h, fmt.Errorf("holding %d has malformed quantity %q: %w", h.ID, quantity, err)
	}
	h.Quantity = qty
	h.Asset = &domain.Asset{Ticker: h.Ticker, Name: name, Sector: sector}
	return h, nil
}

const holdingColumns = `SELECT h.id, h.portfolio_id, h.ticker, h.quantity, h.acquired_on, a.name, a.sector
	FROM holdings h
	JOIN assets a ON a.ticker = h.ticker`

func getHolding(ctx context.Context, tx *sql.Tx, id int64) (*domain.Holding, error) {
	h, err := scanHolding(tx.QueryRowContext(ctx, holdingColumns+` WHERE h.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: lot %d", domain.ErrHoldingNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &h, nil
}

// listLots returns the lots of ticker, most recently acquired first
func listLots(ctx context.Context, tx *sql.Tx, portfolioID, ticker string) ([]domain.Holding, error) {
	rows, err := tx.QueryContext(ctx,
		holdingColumns+` WHERE h.portfolio_id = ? AND h.ticker = ? ORDER BY h.acquired_on DESC, h.id DESC`,
		portfolioID, ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w", err)
	}
	return lots, nil
}

func portfolioExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM portfolios WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to check portfolio: %w", err)
	}
	return nil
}
