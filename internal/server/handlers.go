package server

import (
	"net/http"

	"github.com/aristath/stockfolio/internal/server/respond"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"service": "stockfolio",
	}

	respond.JSON(w, s.log, http.StatusOK, response)
}
