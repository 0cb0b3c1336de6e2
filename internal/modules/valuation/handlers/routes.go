package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers valuation and analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{id}/value", h.HandleGetValue)
	r.Get("/portfolios/{id}/benchmark", h.HandleGetBenchmark)
	r.Get("/portfolios/{id}/sectors", h.HandleGetSectors)
	r.Get("/portfolios/{id}/summary", h.HandleGetSummary)

	r.Get("/assets/{ticker}/analytics", h.HandleGetAnalytics)
}
