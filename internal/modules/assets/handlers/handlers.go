// Package handlers exposes asset fundamentals over HTTP.
package handlers

import (
	"net/http"

	"github.com/aristath/stockfolio/internal/modules/assets"
	"github.com/aristath/stockfolio/internal/server/respond"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles asset HTTP requests
type Handler struct {
	service *assets.Service
	log     zerolog.Logger
}

// NewHandler creates a new asset handler
func NewHandler(service *assets.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "assets").Logger(),
	}
}

// HandleGetFundamentals returns the asset's fundamental snapshot. Fields the
// provider does not report are null.
func (h *Handler) HandleGetFundamentals(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.GetFundamentals(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	respond.JSON(w, h.log, http.StatusOK, f)
}

// RegisterRoutes registers asset routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assets/{ticker}/fundamentals", h.HandleGetFundamentals)
}
