package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondServiceError maps domain errors to status codes. Anything it does
// not recognise is logged and reported as a 500 without internal detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		stockErr      *domain.InsufficientStockError
		transitionErr *domain.InvalidTransitionError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error: stockErr.Error(),
			Code:  "insufficient_stock",
			Details: map[string]any{
				"product_id": stockErr.ProductID.String(),
				"available":  stockErr.Available,
			},
		})
	case errors.As(err, &transitionErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: transitionErr.Error(),
			Code:  "invalid_transition",
			Details: map[string]any{
				"from": string(transitionErr.From),
				"to":   string(transitionErr.To),
			},
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, port.ErrStatusChanged):
		respondError(w, http.StatusConflict, "conflict", "order changed concurrently, retry")
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}

	return true
}
