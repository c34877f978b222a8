package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/storage"
)

// errorResponse is the body for every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service-layer errors onto HTTP statuses.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, storage.ErrEmptyString):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
