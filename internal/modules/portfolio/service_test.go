package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/assets"
	testingpkg "github.com/aristath/stockfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func setupService(t *testing.T) *Service {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)

	fundamentals := testingpkg.NewMockFundamentalsSource()
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "AAPL", Name: strPtr("Apple Inc."), Sector: strPtr("Technology")})
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "XOM", Name: strPtr("Exxon Mobil"), Sector: strPtr("Energy")})
	fundamentals.SetFundamentals(&domain.Fundamentals{Ticker: "SPY"})
	describer := assets.NewService(testingpkg.NewMockQuoteSource(), fundamentals, zerolog.Nop())

	clock := domain.Clock(func() time.Time { return time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC) })
	return NewService(NewRepository(db.Conn(), zerolog.Nop()), describer, clock, zerolog.Nop())
}

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateListDeletePortfolio(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	p, err := svc.CreatePortfolio(ctx, "  Retirement ")
	require.NoError(t, err)
	assert.Equal(t, "Retirement", p.Name)
	assert.Len(t, p.ID, 36)

	_, err = svc.CreatePortfolio(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	list, err := svc.ListPortfolios(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	require.NoError(t, svc.DeletePortfolio(ctx, p.ID))
	_, err = svc.GetPortfolio(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
	assert.ErrorIs(t, svc.DeletePortfolio(ctx, p.ID), domain.ErrPortfolioNotFound)
}

func TestAddHolding_KeepsEachPurchaseAsALot(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)

	_, err = svc.AddHolding(ctx, p.ID, "aapl", qty("10"), "2024-03-01")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "XOM", qty("2.5"), "2024-04-01")
	require.NoError(t, err)
	h, err := svc.AddHolding(ctx, p.ID, "AAPL", qty("5.25"), "2024-05-15")
	require.NoError(t, err)

	assert.True(t, h.Quantity.Equal(qty("5.25")))
	assert.Equal(t, "2024-05-15", h.AcquiredOn)

	// Same ticker and date tops up the existing lot
	h, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("1"), "2024-03-01")
	require.NoError(t, err)
	assert.True(t, h.Quantity.Equal(qty("11")))
	assert.Equal(t, "2024-03-01", h.AcquiredOn)

	got, err := svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Holdings, 3)

	assert.Equal(t, "AAPL", got.Holdings[0].Ticker)
	assert.Equal(t, "2024-03-01", got.Holdings[0].AcquiredOn)
	assert.True(t, got.Holdings[0].Quantity.Equal(qty("11")))
	assert.Equal(t, "Technology", got.Holdings[0].Sector())
	assert.Equal(t, "Apple Inc.", got.Holdings[0].Asset.Name)

	assert.Equal(t, "XOM", got.Holdings[1].Ticker)

	assert.Equal(t, "AAPL", got.Holdings[2].Ticker)
	assert.Equal(t, "2024-05-15", got.Holdings[2].AcquiredOn)
	assert.True(t, got.Holdings[2].Quantity.Equal(qty("5.25")))
}

func TestAddHolding_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)

	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("0"), "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("-3"), "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("1"), "2024-07-01")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("1"), "01/02/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.AddHolding(ctx, p.ID, "NOPE", qty("1"), "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrUnknownTicker)

	_, err = svc.AddHolding(ctx, "missing", "AAPL", qty("1"), "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
}

func TestAddHolding_DefaultsToToday(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)

	h, err := svc.AddHolding(ctx, p.ID, "SPY", qty("3"), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-30", h.AcquiredOn)
	assert.Equal(t, domain.UnknownSector, h.Sector())
}

func TestSellHolding(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("10"), "2024-01-01")
	require.NoError(t, err)

	h, err := svc.SellHolding(ctx, p.ID, "aapl", qty("4"))
	require.NoError(t, err)
	assert.True(t, h.Quantity.Equal(qty("6")))

	_, err = svc.SellHolding(ctx, p.ID, "AAPL", qty("6.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.SellHolding(ctx, p.ID, "AAPL", qty("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	h, err = svc.SellHolding(ctx, p.ID, "AAPL", qty("6"))
	require.NoError(t, err)
	assert.True(t, h.Quantity.IsZero())

	got, err := svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Holdings)

	_, err = svc.SellHolding(ctx, p.ID, "AAPL", qty("1"))
	assert.ErrorIs(t, err, domain.ErrHoldingNotFound)
}

func TestSellHolding_TakesLatestLotFirst(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("1"), "2024-01-01")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("9"), "2024-06-01")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "AAPL", qty("5"), "2024-03-01")
	require.NoError(t, err)

	_, err = svc.SellHolding(ctx, p.ID, "AAPL", qty("15.5"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Empties the June lot and takes 2 from the March lot
	h, err := svc.SellHolding(ctx, p.ID, "AAPL", qty("11"))
	require.NoError(t, err)
	assert.True(t, h.Quantity.Equal(qty("4")))
	assert.Equal(t, "2024-01-01", h.AcquiredOn)

	got, err := svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Holdings, 2)
	assert.Equal(t, "2024-01-01", got.Holdings[0].AcquiredOn)
	assert.True(t, got.Holdings[0].Quantity.Equal(qty("1")))
	assert.Equal(t, "2024-03-01", got.Holdings[1].AcquiredOn)
	assert.True(t, got.Holdings[1].Quantity.Equal(qty("3")))

	h, err = svc.SellHolding(ctx, p.ID, "AAPL", qty("4"))
	require.NoError(t, err)
	assert.True(t, h.Quantity.IsZero())

	got, err = svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Holdings)
}

func TestRemoveHolding(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "XOM", qty("7"), "2024-01-01")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "XOM", qty("3"), "2024-02-01")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveHolding(ctx, p.ID, "xom"))
	got, err := svc.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Holdings)
	assert.ErrorIs(t, svc.RemoveHolding(ctx, p.ID, "XOM"), domain.ErrHoldingNotFound)
}

func TestDeletePortfolio_CascadesHoldings(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePortfolio(ctx, "Main")
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, p.ID, "XOM", qty("7"), "2024-01-01")
	require.NoError(t, err)

	require.NoError(t, svc.DeletePortfolio(ctx, p.ID))

	var count int
	require.NoError(t, svc.repo.db.QueryRow("SELECT COUNT(*) FROM holdings").Scan(&count))
	assert.Zero(t, count)
}
