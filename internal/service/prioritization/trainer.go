// internal/service/prioritization/trainer.go

package prioritization

import (
	"context"
	"log/slog"
	"sync/atomic"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

// Training outcomes
const (
	OutcomeDeployed         = "deployed"
	OutcomeInsufficientData = "insufficient_data"
)

// TrainingOutcome describes one retraining cycle
type TrainingOutcome struct {
	Status      string `json:"status"`
	Samples     int    `json:"samples"`
	ModelID     string `json:"model_id,omitempty"`
	EndpointURL string `json:"endpoint_url,omitempty"`
}

// PredictorFactory builds a prediction client for a deployed model
type PredictorFactory func(d topic.Deployment) topic.Predictor

// Retrainer pulls historical rows, launches a training job and swaps the
// engine's scorer once the new model is deployed. Only one cycle runs at a
// time; any failure keeps the current scorer.
type Retrainer struct {
	source       topic.TrainingSource
	trainer      topic.Trainer
	engine       *Engine
	newPredictor PredictorFactory
	config       config.PrioritizationConfig
	running      atomic.Bool
	logger       *slog.Logger
}

// NewRetrainer creates a retrainer for engine
func NewRetrainer(
	source topic.TrainingSource,
	trainer topic.Trainer,
	engine *Engine,
	newPredictor PredictorFactory,
	cfg config.PrioritizationConfig,
	logger *slog.Logger,
) *Retrainer {
	return &Retrainer{
		source:       source,
		trainer:      trainer,
		engine:       engine,
		newPredictor: newPredictor,
		config:       cfg,
		logger:       logger.With("component", "retrainer"),
	}
}

// Running reports whether a cycle is in progress
func (r *Retrainer) Running() bool {
	return r.running.Load()
}

// Run executes one retraining cycle. It returns ErrTrainingInProgress when
// another cycle is already running.
func (r *Retrainer) Run(ctx context.Context) (TrainingOutcome, error) {
	if !r.running.CompareAndSwap(false, true) {
		return TrainingOutcome{}, topic.ErrTrainingInProgress
	}
	defer r.running.Store(false)

	rows, err := r.source.TrainingRows(ctx)
	if err != nil {
		r.logger.Error("failed to load training data", "error", err)
		return TrainingOutcome{}, topic.Upstream("training source", err)
	}

	minSamples := r.config.Training.MinSamples
	if len(rows) < minSamples {
		r.logger.Warn("insufficient training data", "samples", len(rows), "min_samples", minSamples)
		return TrainingOutcome{Status: OutcomeInsufficientData, Samples: len(rows)}, nil
	}

	features := make([][4]float64, len(rows))
	labels := make([]float64, len(rows))
	for i, row := range rows {
		features[i] = row.Features.Vector()
		labels[i] = row.Label
	}

	params := topic.Hyperparams{
		Epochs:       r.config.Training.Epochs,
		BatchSize:    r.config.Training.BatchSize,
		LearningRate: r.config.Training.LearningRate,
	}

	r.logger.Info("launching training job", "samples", len(rows))
	deployment, err := r.trainer.Train(ctx, features, labels, params)
	if err != nil {
		r.logger.Error("training job failed, keeping current scorer", "error", err)
		return TrainingOutcome{}, topic.Upstream("training job", err)
	}

	learned := &LearnedScorer{
		Predictor: r.newPredictor(deployment),
		ModelID:   deployment.ModelID,
	}
	fallback := &WeightedScorer{Weights: r.config.Weights}
	r.engine.SwapScorer(NewFallbackScorer(learned, fallback, r.config.PredictTimeout, r.logger))

	r.logger.Info("deployed new scorer", "model_id", deployment.ModelID, "endpoint", deployment.EndpointURL)
	return TrainingOutcome{
		Status:      OutcomeDeployed,
		Samples:     len(rows),
		ModelID:     deployment.ModelID,
		EndpointURL: deployment.EndpointURL,
	}, nil
}
