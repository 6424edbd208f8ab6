// internal/service/prioritization/engine.go

package prioritization

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

type scorerRef struct {
	Scorer
}

// Engine enriches a topic with historical signals, scores it and publishes
// it when it clears the priority threshold
type Engine struct {
	signals   topic.SignalStore
	publisher topic.Publisher
	scorer    atomic.Pointer[scorerRef]
	config    config.PrioritizationConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine creates an engine that starts with scorer
func NewEngine(
	signals topic.SignalStore,
	publisher topic.Publisher,
	scorer Scorer,
	cfg config.PrioritizationConfig,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		signals:   signals,
		publisher: publisher,
		config:    cfg,
		logger:    logger.With("component", "prioritization"),
		now:       time.Now,
	}
	e.scorer.Store(&scorerRef{scorer})
	return e
}

// SwapScorer replaces the active scorer. In-flight calls finish with the
// scorer they started with.
func (e *Engine) SwapScorer(s Scorer) {
	e.scorer.Store(&scorerRef{s})
}

// Scorer returns the active scorer
func (e *Engine) Scorer() Scorer {
	return e.scorer.Load().Scorer
}

// Prioritize computes the priority of one topic. A publish failure is
// returned together with the assembled topic.
func (e *Engine) Prioritize(ctx context.Context, in topic.TopicInput) (topic.PrioritizedTopic, error) {
	if strings.TrimSpace(in.Term) == "" {
		return topic.PrioritizedTopic{}, topic.Invalid("term", "is required")
	}
	if math.IsNaN(in.Score) || math.IsInf(in.Score, 0) {
		return topic.PrioritizedTopic{}, topic.Invalid("score", "must be a finite number")
	}

	signals, found, err := e.signals.Lookup(ctx, in.Term)
	if err != nil {
		return topic.PrioritizedTopic{}, topic.Upstream("signal store", err)
	}
	if !found {
		signals = topic.Signals{}
	}

	features := topic.Features{
		SearchVolume: signals.SearchVolume,
		Competition:  signals.Competition,
		TrendScore:   in.Score,
		HITLScore:    signals.HITLScore,
	}

	raw, err := e.Scorer().Score(ctx, features)
	if err != nil {
		return topic.PrioritizedTopic{}, fmt.Errorf("failed to score topic %q: %w", in.Term, err)
	}
	priority := topic.Clamp01(raw)

	meta := make(map[string]any, len(in.Metadata)+2)
	maps.Copy(meta, in.Metadata)
	meta["priority_factors"] = features.Map()
	meta["prioritized_at"] = e.now().UTC().Format(time.RFC3339)

	result := topic.PrioritizedTopic{
		Term:          in.Term,
		OriginalScore: in.Score,
		PriorityScore: priority,
		Metadata:      meta,
	}

	if priority < e.config.MinPriorityScore {
		e.logger.Debug("topic below priority threshold", "term", in.Term, "priority", priority)
		return result, nil
	}

	result.Published = true
	if err := e.publish(ctx, result); err != nil {
		result.Published = false
		e.logger.Error("failed to publish prioritized topic", "term", in.Term, "error", err)
		return result, topic.Upstream("publisher", err)
	}

	e.logger.Info("prioritized topic published", "term", in.Term, "priority", priority)
	return result, nil
}

func (e *Engine) publish(ctx context.Context, t topic.PrioritizedTopic) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal topic: %w", err)
	}
	if _, err := e.publisher.Publish(ctx, e.config.PrioritizedSubject, payload); err != nil {
		return err
	}
	return nil
}
