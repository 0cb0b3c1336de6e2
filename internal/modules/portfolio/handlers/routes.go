package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers portfolio and holding management routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios", h.HandleListPortfolios)
	r.Post("/portfolios", h.HandleCreatePortfolio)
	r.Get("/portfolios/{id}", h.HandleGetPortfolio)
	r.Delete("/portfolios/{id}", h.HandleDeletePortfolio)

	r.Post("/portfolios/{id}/holdings", h.HandleAddHolding)
	r.Post("/portfolios/{id}/holdings/{ticker}/sell", h.HandleSellHolding)
	r.Delete("/portfolios/{id}/holdings/{ticker}", h.HandleRemoveHolding)
}
