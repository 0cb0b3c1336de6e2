// Package respond writes JSON responses and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/rs/zerolog"
)

// ErrBadRequest marks malformed request input
var ErrBadRequest = errors.New("bad request")

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSON writes data with the given status
func JSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// Error writes err with the status and code its kind maps to
func Error(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := Status(err)
	code := domain.ErrorCode(err)
	if errors.Is(err, ErrBadRequest) {
		code = "bad_request"
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	} else {
		log.Debug().Err(err).Str("code", code).Msg("Request rejected")
	}

	JSON(w, log, status, ErrorBody{Error: err.Error(), Code: code})
}

// Status maps an error to its HTTP status
func Status(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPortfolioNotFound),
		errors.Is(err, domain.ErrHoldingNotFound),
		errors.Is(err, domain.ErrUnknownTicker):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDegenerateSeries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
