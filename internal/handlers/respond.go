package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServiceError maps service failures onto the response taxonomy:
// validation 400, not-found 404, ownership 401, everything else a logged 500
// that leaks nothing beyond "Server error".
func writeServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case services.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, services.ErrNotAuthorized):
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// writeError is writeServiceError for paths that cannot produce ErrNotFound.
func writeError(w http.ResponseWriter, err error) {
	writeServiceError(w, err, "Not found")
}
