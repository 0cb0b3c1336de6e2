// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aristath/stockfolio/internal/modules/portfolio"
	"github.com/aristath/stockfolio/internal/server/respond"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service  *portfolio.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

type createPortfolioRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type addHoldingRequest struct {
	Ticker     string          `json:"ticker" validate:"required,max=20"`
	Quantity   decimal.Decimal `json:"quantity"`
	AcquiredOn string          `json:"acquired_on" validate:"omitempty,datetime=2006-01-02"`
}

type sellHoldingRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// HandleListPortfolios returns every portfolio without holdings
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.service.ListPortfolios(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, portfolios)
}

// HandleCreatePortfolio creates an empty portfolio
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := h.decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.service.CreatePortfolio(r.Context(), req.Name)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusCreated, p)
}

// HandleGetPortfolio returns a portfolio with its holdings
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPortfolio(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, p)
}

// HandleDeletePortfolio deletes a portfolio and its holdings
func (h *Handler) HandleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePortfolio(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddHolding records a purchase as a new lot
func (h *Handler) HandleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	if err := h.decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	holding, err := h.service.AddHolding(r.Context(), chi.URLParam(r, "id"), req.Ticker, req.Quantity, req.AcquiredOn)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusCreated, holding)
}

// HandleSellHolding decreases a holding
func (h *Handler) HandleSellHolding(w http.ResponseWriter, r *http.Request) {
	var req sellHoldingRequest
	if err := h.decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	holding, err := h.service.SellHolding(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "ticker"), req.Quantity)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, holding)
}

// HandleRemoveHolding deletes a holding
func (h *Handler) HandleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveHolding(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "ticker")); err != nil {
		respond.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into dst and validates its struct tags
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", respond.ErrBadRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", respond.ErrBadRequest, err)
	}
	return nil
}
