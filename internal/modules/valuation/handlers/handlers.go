// Package handlers exposes portfolio valuation and asset analytics over HTTP.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/analytics"
	"github.com/aristath/stockfolio/internal/modules/valuation"
	"github.com/aristath/stockfolio/internal/server/respond"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles valuation HTTP requests
type Handler struct {
	service *valuation.Service
	log     zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(service *valuation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "valuation").Logger(),
	}
}

// HandleGetValue returns the portfolio value curve
// Query: from, to (YYYY-MM-DD) or range (1M, 3M, 6M, 1Y, 5Y, 10Y);
// interval (day, week, month) downsamples the curve
func (h *Handler) HandleGetValue(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	val, err := h.service.ComputePortfolioValue(r.Context(), chi.URLParam(r, "id"), dr)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	if err := val.Downsample(r.URL.Query().Get("interval")); err != nil {
		respond.Error(w, h.log, fmt.Errorf("%w: %v", respond.ErrBadRequest, err))
		return
	}

	respond.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"portfolio_id":     chi.URLParam(r, "id"),
		"range":            dr,
		"series":           val.Series,
		"partial_coverage": val.Coverage,
	})
}

// HandleGetBenchmark returns the portfolio and benchmark curves rebased to 100
// Query: ticker (default benchmark when empty) plus the date range and
// interval parameters
func (h *Handler) HandleGetBenchmark(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	cmp, err := h.service.ComputeBenchmarkComparison(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("ticker"), dr)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	if err := cmp.Downsample(r.URL.Query().Get("interval")); err != nil {
		respond.Error(w, h.log, fmt.Errorf("%w: %v", respond.ErrBadRequest, err))
		return
	}
	respond.JSON(w, h.log, http.StatusOK, cmp)
}

// HandleGetSectors returns the sector distribution as of a date
// Query: as_of (YYYY-MM-DD, default today)
func (h *Handler) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	dist, err := h.service.ComputeSectorDistribution(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("as_of"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, dist)
}

// HandleGetSummary returns current holding values and the one-year change
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ComputePortfolioSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, summary)
}

// HandleGetAnalytics returns an asset's closes with Bollinger Bands
// Query: date range parameters, window (int), k (float)
func (h *Handler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	q := r.URL.Query()
	window := 0
	if v := q.Get("window"); v != "" {
		if window, err = strconv.Atoi(v); err != nil {
			respond.Error(w, h.log, fmt.Errorf("%w: window must be an integer", respond.ErrBadRequest))
			return
		}
	}
	k := 0.0
	if v := q.Get("k"); v != "" {
		if k, err = strconv.ParseFloat(v, 64); err != nil {
			respond.Error(w, h.log, fmt.Errorf("%w: k must be a number", respond.ErrBadRequest))
			return
		}
	}

	result, err := h.service.ComputeAssetAnalytics(r.Context(), chi.URLParam(r, "ticker"), dr, window, k)
	if errors.Is(err, analytics.ErrInvalidArgument) {
		err = fmt.Errorf("%w: %v", respond.ErrBadRequest, err)
	}
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, result)
}

// dateRange reads from/to, falling back to the range shorthand ending on
// to (or today). Without any parameter the range is the last year.
func (h *Handler) dateRange(r *http.Request) (domain.DateRange, error) {
	return domain.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), r.URL.Query().Get("range"), h.service.Today())
}
