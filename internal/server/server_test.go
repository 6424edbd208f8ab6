package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
	"topicpulse/internal/logging"
	"topicpulse/internal/server/handlers"
	"topicpulse/internal/service/prioritization"
)

type stubDiscovery struct{}

func (stubDiscovery) Process(context.Context, topic.RawData) ([]topic.ScoredTopic, error) {
	return nil, nil
}

func (stubDiscovery) DiscoverTrends(context.Context) ([]topic.ScoredTopic, error) {
	return nil, nil
}

func (stubDiscovery) PublishAsync([]topic.ScoredTopic) {}

func (stubDiscovery) Topics(context.Context, topic.TopicFilter) ([]topic.ScoredTopic, error) {
	return nil, nil
}

type stubEngine struct{}

func (stubEngine) Prioritize(_ context.Context, in topic.TopicInput) (topic.PrioritizedTopic, error) {
	return topic.PrioritizedTopic{Term: in.Term, OriginalScore: in.Score}, nil
}

type stubRunner struct{}

func (stubRunner) Run(context.Context) (prioritization.TrainingOutcome, error) {
	return prioritization.TrainingOutcome{Status: prioritization.OutcomeInsufficientData}, nil
}

type slowRunner struct {
	delay time.Duration
}

func (r slowRunner) Run(ctx context.Context) (prioritization.TrainingOutcome, error) {
	select {
	case <-time.After(r.delay):
		return prioritization.TrainingOutcome{Status: prioritization.OutcomeDeployed, Samples: 150}, nil
	case <-ctx.Done():
		return prioritization.TrainingOutcome{}, ctx.Err()
	}
}

func testServerConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func TestDiscoveryRoutes(t *testing.T) {
	srv := NewDiscoveryServer(testServerConfig(), handlers.NewDiscoveryHandler(stubDiscovery{}, logging.Discard()))

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{method: http.MethodGet, path: "/health", code: http.StatusOK},
		{method: http.MethodGet, path: "/trends", code: http.StatusOK},
		{method: http.MethodGet, path: "/topics", code: http.StatusOK},
		{method: http.MethodPost, path: "/process", body: `{"source":"s","content":{},"timestamp":"2024-01-01T00:00:00Z"}`, code: http.StatusOK},
		{method: http.MethodGet, path: "/process", code: http.StatusMethodNotAllowed},
		{method: http.MethodPost, path: "/prioritize", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestPrioritizationRoutes(t *testing.T) {
	h := handlers.NewPrioritizationHandler(stubEngine{}, stubRunner{}, time.Minute, logging.Discard())
	srv := NewPrioritizationServer(testServerConfig(), h)

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{method: http.MethodGet, path: "/health", code: http.StatusOK},
		{method: http.MethodPost, path: "/prioritize", body: `{"term":"t","score":0.4,"timestamp":"2024-01-01T00:00:00Z"}`, code: http.StatusOK},
		{method: http.MethodPost, path: "/train", code: http.StatusOK},
		{method: http.MethodGet, path: "/train", code: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/topics", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHealthBody(t *testing.T) {
	srv := NewDiscoveryServer(testServerConfig(), handlers.NewDiscoveryHandler(stubDiscovery{}, logging.Discard()))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "OK", w.Body.String())
}

func TestTrainResponseOutlivesWriteTimeout(t *testing.T) {
	cfg := testServerConfig()
	cfg.WriteTimeout = 200 * time.Millisecond

	h := handlers.NewPrioritizationHandler(stubEngine{}, slowRunner{delay: 500 * time.Millisecond}, time.Minute, logging.Discard())
	srv := NewPrioritizationServer(cfg, h)

	ts := httptest.NewUnstartedServer(srv.Handler())
	ts.Config.WriteTimeout = cfg.WriteTimeout
	ts.Start()
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/train", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /train: %v", err)
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.TrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode /train response: %v", err)
	}
	assert.Equal(t, "Model training completed", body.Message)
	assert.Equal(t, 150, body.Outcome.Samples)
}
