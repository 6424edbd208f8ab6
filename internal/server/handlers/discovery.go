// internal/server/handlers/discovery.go

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"topicpulse/internal/domain/topic"
)

// DiscoveryService is the topic discovery surface used by the handlers
type DiscoveryService interface {
	Process(ctx context.Context, raw topic.RawData) ([]topic.ScoredTopic, error)
	DiscoverTrends(ctx context.Context) ([]topic.ScoredTopic, error)
	PublishAsync(topics []topic.ScoredTopic)
	Topics(ctx context.Context, filter topic.TopicFilter) ([]topic.ScoredTopic, error)
}

// DiscoveryHandler handles topic discovery HTTP requests
type DiscoveryHandler struct {
	service DiscoveryService
	logger  *slog.Logger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(service DiscoveryService, logger *slog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		service: service,
		logger:  logger.With("component", "discovery_handler"),
	}
}

type processRequest struct {
	Source    string         `json:"source"`
	Region    string         `json:"region"`
	Content   *topic.Content `json:"content"`
	Timestamp *time.Time     `json:"timestamp"`
}

// ProcessResponse is the body of POST /process
type ProcessResponse struct {
	Status           string              `json:"status"`
	TopicsDiscovered int                 `json:"topics_discovered"`
	Topics           []topic.ScoredTopic `json:"topics"`
}

// TrendsResponse is the body of GET /trends
type TrendsResponse struct {
	Status           string              `json:"status"`
	TrendsDiscovered int                 `json:"trends_discovered"`
	Trends           []topic.ScoredTopic `json:"trends"`
}

// TopicsResponse is the body of GET /topics
type TopicsResponse struct {
	Status string              `json:"status"`
	Count  int                 `json:"count"`
	Topics []topic.ScoredTopic `json:"topics"`
}

// ProcessRawData extracts and publishes the topics of one raw batch
func (h *DiscoveryHandler) ProcessRawData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "invalid JSON body", false)
		return
	}

	switch {
	case strings.TrimSpace(req.Source) == "":
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "source is required", false)
		return
	case req.Content == nil:
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "content is required", false)
		return
	case req.Timestamp == nil || req.Timestamp.IsZero():
		respondWithError(w, http.StatusUnprocessableEntity, KindValidation, "timestamp is required", false)
		return
	}

	topics, err := h.service.Process(r.Context(), topic.RawData{
		Source:    req.Source,
		Region:    req.Region,
		Content:   *req.Content,
		Timestamp: *req.Timestamp,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, "process", err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProcessResponse{
		Status:           "success",
		TopicsDiscovered: len(topics),
		Topics:           nonNil(topics),
	})
}

// GetTrends discovers trends from every source and publishes them in the background
func (h *DiscoveryHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.DiscoverTrends(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, "trends", err)
		return
	}

	h.service.PublishAsync(trends)

	respondWithJSON(w, http.StatusOK, TrendsResponse{
		Status:           "success",
		TrendsDiscovered: len(trends),
		Trends:           nonNil(trends),
	})
}

// GetTopics returns previously discovered topics
func (h *DiscoveryHandler) GetTopics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter topic.TopicFilter

	if v := query.Get("min_score"); v != "" {
		minScore, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(minScore) || math.IsInf(minScore, 0) {
			respondWithError(w, http.StatusBadRequest, KindValidation, "invalid min_score", false)
			return
		}
		filter.MinScore = minScore
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, KindValidation, "invalid limit", false)
			return
		}
		filter.Limit = limit
	}

	if v := query.Get("category"); v != "" {
		category, err := topic.ParseCategory(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, KindValidation, err.Error(), false)
			return
		}
		filter.Category = category
	}

	filter.Source = strings.TrimSpace(query.Get("source"))

	topics, err := h.service.Topics(r.Context(), filter)
	if err != nil {
		respondWithDomainError(w, h.logger, "topics", err)
		return
	}

	respondWithJSON(w, http.StatusOK, TopicsResponse{
		Status: "success",
		Count:  len(topics),
		Topics: nonNil(topics),
	})
}

func nonNil(topics []topic.ScoredTopic) []topic.ScoredTopic {
	if topics == nil {
		return []topic.ScoredTopic{}
	}
	return topics
}
