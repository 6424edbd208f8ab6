// internal/service/prioritization/scorer.go

package prioritization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

// Scorer maps enrichment features to a priority score
type Scorer interface {
	Score(ctx context.Context, f topic.Features) (float64, error)
}

// WeightedScorer is the deterministic weighted sum of the features,
// clamped to [0,1]
type WeightedScorer struct {
	Weights config.WeightsConfig
}

var _ Scorer = (*WeightedScorer)(nil)

// Score never fails
func (w *WeightedScorer) Score(_ context.Context, f topic.Features) (float64, error) {
	sum := f.SearchVolume*w.Weights.SearchVolume +
		f.Competition*w.Weights.Competition +
		f.TrendScore*w.Weights.TrendScore +
		f.HITLScore*w.Weights.HITLScore
	return topic.Clamp01(sum), nil
}

// ErrInvalidPrediction is returned when a model answers with a non-finite value
var ErrInvalidPrediction = errors.New("model returned a non-finite prediction")

// LearnedScorer asks a deployed model for the score
type LearnedScorer struct {
	Predictor topic.Predictor
	ModelID   string
}

var _ Scorer = (*LearnedScorer)(nil)

// Score calls the prediction endpoint with the feature vector
func (l *LearnedScorer) Score(ctx context.Context, f topic.Features) (float64, error) {
	v, err := l.Predictor.Predict(ctx, f.Vector())
	if err != nil {
		return 0, fmt.Errorf("model %s: %w", l.ModelID, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("model %s: %w", l.ModelID, ErrInvalidPrediction)
	}
	return v, nil
}

// FallbackScorer tries Primary within Timeout and answers with Fallback
// when it fails or is too slow. Callers cannot tell which one answered.
type FallbackScorer struct {
	Primary  Scorer
	Fallback Scorer
	Timeout  time.Duration
	logger   *slog.Logger
}

var _ Scorer = (*FallbackScorer)(nil)

// NewFallbackScorer wraps primary with fallback
func NewFallbackScorer(primary, fallback Scorer, timeout time.Duration, logger *slog.Logger) *FallbackScorer {
	return &FallbackScorer{
		Primary:  primary,
		Fallback: fallback,
		Timeout:  timeout,
		logger:   logger.With("component", "scorer"),
	}
}

// Score returns the primary result or, on failure, the fallback result
func (s *FallbackScorer) Score(ctx context.Context, f topic.Features) (float64, error) {
	if s.Primary != nil {
		pctx := ctx
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			pctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}

		v, err := s.Primary.Score(pctx, f)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, nil
		}
		if err == nil {
			err = ErrInvalidPrediction
		}
		s.logger.Warn("primary scorer failed, using fallback", "error", err)
	}
	return s.Fallback.Score(ctx, f)
}
