// internal/server/handlers/respond.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"topicpulse/internal/domain/topic"
)

const maxBodyBytes = 1 << 20

// Error kinds in error payloads
const (
	KindValidation = "validation"
	KindDependency = "dependency"
	KindConflict   = "conflict"
	KindInternal   = "internal"
)

// ErrorResponse is the error payload of every endpoint
type ErrorResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, kind, message string, retryable bool) {
	respondWithJSON(w, code, ErrorResponse{
		Status:    "error",
		Error:     message,
		Kind:      kind,
		Retryable: retryable,
	})
}

// respondWithDomainError maps service errors onto status codes. Server-side
// failures are logged with their cause; the payload keeps the message short.
func respondWithDomainError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var (
		ve *topic.ValidationError
		de *topic.DependencyError
	)

	switch {
	case errors.As(err, &ve):
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, ve.Error(), false)
	case errors.Is(err, topic.ErrTrainingInProgress):
		respondWithError(w, http.StatusConflict, KindConflict, err.Error(), true)
	case errors.As(err, &de):
		logger.Error("upstream dependency failed", "op", op, "dependency", de.Dependency, "error", de.Err)
		respondWithError(w, http.StatusBadGateway, KindDependency, de.Dependency+" unavailable", true)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("request timed out", "op", op, "error", err)
		respondWithError(w, http.StatusGatewayTimeout, KindDependency, "request timed out", true)
	default:
		logger.Error("request failed", "op", op, "error", err)
		respondWithError(w, http.StatusInternalServerError, KindInternal, "internal error", false)
	}
}
