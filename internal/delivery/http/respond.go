package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/egannguyen/go-order-management/internal/entity"
)

type errorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"product_id,omitempty"`
}

type validationResponse struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// decodeJSON reads the request body into v, answering 400 on malformed
// input. Returns false when the request was already answered.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError translates the error taxonomy into HTTP once, here. Anything
// outside the taxonomy is a server fault.
func writeError(w http.ResponseWriter, err error) {
	if ve := entity.AsValidation(err); ve != nil {
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: ve.Fields})
		return
	}
	if entity.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	var stock *entity.InsufficientStockError
	if errors.As(err, &stock) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), ProductID: stock.ProductID})
		return
	}
	if entity.IsUnavailable(err) {
		slog.Error("Store unavailable", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service unavailable"})
		return
	}
	slog.Error("Unhandled error", "err", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
