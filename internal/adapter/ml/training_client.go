// internal/adapter/ml/training_client.go

package ml

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"topicpulse/internal/domain/topic"
)

// Job states reported by the launcher
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

type jobRequest struct {
	DisplayName     string            `json:"display_name"`
	Features        [][4]float64      `json:"features"`
	Labels          []float64         `json:"labels"`
	FeatureNames    []string          `json:"feature_names"`
	Hyperparameters topic.Hyperparams `json:"hyperparameters"`
}

type jobStatus struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	ModelID     string    `json:"model_id"`
	EndpointURL string    `json:"endpoint_url"`
	Error       string    `json:"error"`
	DeployedAt  time.Time `json:"deployed_at"`
}

// TrainingClient launches a training job and waits for its deployment.
// POST {launcher}/jobs starts a job; GET {launcher}/jobs/{id} reports its state.
type TrainingClient struct {
	client       jsonClient
	pollInterval time.Duration
	newName      func() string
	logger       *slog.Logger
}

var _ topic.Trainer = (*TrainingClient)(nil)

// NewTrainingClient creates a launcher client
func NewTrainingClient(launcherURL, apiKey string, pollInterval time.Duration, client *http.Client, logger *slog.Logger) *TrainingClient {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &TrainingClient{
		client:       newJSONClient(launcherURL, apiKey, client),
		pollInterval: pollInterval,
		newName:      func() string { return "topic-priority-" + uuid.New().String() },
		logger:       logger.With("component", "training_client"),
	}
}

// Train blocks until the job is deployed, fails, or ctx ends
func (t *TrainingClient) Train(
	ctx context.Context,
	features [][4]float64,
	labels []float64,
	params topic.Hyperparams,
) (topic.Deployment, error) {
	if len(features) != len(labels) {
		return topic.Deployment{}, fmt.Errorf("features and labels differ in length: %d != %d", len(features), len(labels))
	}

	var job jobStatus
	err := t.client.do(ctx, http.MethodPost, "/jobs", jobRequest{
		DisplayName:     t.newName(),
		Features:        features,
		Labels:          labels,
		FeatureNames:    []string{"search_volume", "competition", "trend_score", "hitl_score"},
		Hyperparameters: params,
	}, &job)
	if err != nil {
		return topic.Deployment{}, fmt.Errorf("launch training job: %w", err)
	}
	if job.ID == "" {
		return topic.Deployment{}, fmt.Errorf("launch training job: empty job id")
	}

	t.logger.Info("training job launched", "job_id", job.ID, "samples", len(labels))

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		if done, dep, err := t.settle(job); done {
			return dep, err
		}

		select {
		case <-ctx.Done():
			return topic.Deployment{}, fmt.Errorf("training job %s: %w", job.ID, ctx.Err())
		case <-ticker.C:
		}

		if err := t.client.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(job.ID), nil, &job); err != nil {
			return topic.Deployment{}, fmt.Errorf("poll training job: %w", err)
		}
	}
}

func (t *TrainingClient) settle(job jobStatus) (bool, topic.Deployment, error) {
	switch strings.ToLower(job.State) {
	case JobSucceeded:
		if job.EndpointURL == "" {
			return true, topic.Deployment{}, fmt.Errorf("training job %s succeeded without an endpoint", job.ID)
		}
		deployedAt := job.DeployedAt
		if deployedAt.IsZero() {
			deployedAt = time.Now().UTC()
		}
		modelID := job.ModelID
		if modelID == "" {
			modelID = job.ID
		}
		return true, topic.Deployment{
			ModelID:     modelID,
			EndpointURL: job.EndpointURL,
			DeployedAt:  deployedAt,
		}, nil
	case JobFailed, JobCancelled:
		return true, topic.Deployment{}, fmt.Errorf("training job %s %s: %s", job.ID, job.State, job.Error)
	default:
		t.logger.Debug("training job in progress", "job_id", job.ID, "state", job.State)
		return false, topic.Deployment{}, nil
	}
}
