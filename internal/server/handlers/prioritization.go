// internal/server/handlers/prioritization.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"topicpulse/internal/domain/topic"
	"topicpulse/internal/service/prioritization"
)

// trainWriteMargin leaves room to write the response after a cycle that ran
// up to the training timeout
const trainWriteMargin = 30 * time.Second

// Prioritizer scores a single topic
type Prioritizer interface {
	Prioritize(ctx context.Context, in topic.TopicInput) (topic.PrioritizedTopic, error)
}

// TrainingRunner runs one retraining cycle
type TrainingRunner interface {
	Run(ctx context.Context) (prioritization.TrainingOutcome, error)
}

// PrioritizationHandler handles prioritization HTTP requests
type PrioritizationHandler struct {
	engine       Prioritizer
	trainer      TrainingRunner
	trainTimeout time.Duration
	logger       *slog.Logger
}

// NewPrioritizationHandler creates a new prioritization handler. A training
// cycle started over HTTP is bounded by trainTimeout, not by the request.
func NewPrioritizationHandler(
	engine Prioritizer,
	trainer TrainingRunner,
	trainTimeout time.Duration,
	logger *slog.Logger,
) *PrioritizationHandler {
	return &PrioritizationHandler{
		engine:       engine,
		trainer:      trainer,
		trainTimeout: trainTimeout,
		logger:       logger.With("component", "prioritization_handler"),
	}
}

type prioritizeRequest struct {
	Term      string         `json:"term"`
	Score     *float64       `json:"score"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp *time.Time     `json:"timestamp"`
}

// PrioritizeResponse is the body of POST /prioritize
type PrioritizeResponse struct {
	Status string                 `json:"status"`
	Topic  topic.PrioritizedTopic `json:"topic"`
}

// TrainResponse is the body of POST /train
type TrainResponse struct {
	Status  string                         `json:"status"`
	Message string                         `json:"message"`
	Outcome prioritization.TrainingOutcome `json:"outcome"`
}

// Prioritize enriches and scores one topic
func (h *PrioritizationHandler) Prioritize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req prioritizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "invalid JSON body", false)
		return
	}

	switch {
	case strings.TrimSpace(req.Term) == "":
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "term is required", false)
		return
	case req.Score == nil:
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "score is required", false)
		return
	case req.Timestamp == nil || req.Timestamp.IsZero():
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "timestamp is required", false)
		return
	}

	result, err := h.engine.Prioritize(r.Context(), topic.TopicInput{
		Term:      req.Term,
		Score:     *req.Score,
		Metadata:  req.Metadata,
		Timestamp: *req.Timestamp,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, "prioritize", err)
		return
	}

	respondWithJSON(w, http.StatusOK, PrioritizeResponse{Status: "success", Topic: result})
}

// Train runs one retraining cycle synchronously. The connection's write
// deadline is pushed past the training timeout so the result still reaches
// the client when the cycle outlasts the server's WriteTimeout.
func (h *PrioritizationHandler) Train(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	var writeDeadline time.Time
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
		writeDeadline = time.Now().Add(h.trainTimeout + trainWriteMargin)
	}
	if err := http.NewResponseController(w).SetWriteDeadline(writeDeadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("failed to extend write deadline", "error", err)
	}

	outcome, err := h.trainer.Run(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, "train", err)
		return
	}

	message := "Model training completed"
	if outcome.Status == prioritization.OutcomeInsufficientData {
		message = "Insufficient training data; active model unchanged"
	}

	respondWithJSON(w, http.StatusOK, TrainResponse{
		Status:  "success",
		Message: message,
		Outcome: outcome,
	})
}
