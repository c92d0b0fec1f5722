package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/service"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service and generation errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if genErr, ok := domain.AsGenerationError(err); ok {
		status := http.StatusBadGateway
		if genErr.Kind == domain.GenerationRateLimit {
			w.Header().Set("Retry-After", "5")
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, errorResponse{
			Error: "the elders could not be reached: " + string(genErr.Kind),
			Kind:  string(genErr.Kind),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, domain.ErrUnknownPersona):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrHistoryDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
