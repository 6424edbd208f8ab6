// internal/service/discovery/service.go

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
	"topicpulse/internal/worker"
)

// TrendBatchSource labels batches produced by DiscoverTrends
const TrendBatchSource = "google"

// Service implements topic discovery over raw batches and trend sources
type Service struct {
	preprocessor *Preprocessor
	extractor    *Extractor
	filter       *Filter
	aggregator   *Aggregator
	publisher    topic.Publisher
	store        topic.TopicStore
	analyzer     topic.EntityAnalyzer
	enrichOpts   worker.Options
	config       config.DiscoveryConfig
	logger       *slog.Logger
	wg           sync.WaitGroup
}

// NewService creates a discovery service. store may be nil, in which case
// nothing is persisted.
func NewService(
	cfg config.DiscoveryConfig,
	aggregator *Aggregator,
	publisher topic.Publisher,
	store topic.TopicStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		preprocessor: NewPreprocessor(cfg.NLP),
		extractor:    NewExtractor(cfg.NLP),
		filter: &Filter{
			MinTrendScore:     cfg.Analysis.MinTrendScore,
			MaxTopicsPerBatch: cfg.Analysis.MaxTopicsPerBatch,
			Tagger:            NewLexiconTagger(),
		},
		aggregator: aggregator,
		publisher:  publisher,
		store:      store,
		config:     cfg,
		logger:     logger.With("component", "discovery"),
	}
}

// EnableEnrichment adds entity type and salience to discovered trends
// using analyzer, run through a bounded worker pool
func (s *Service) EnableEnrichment(analyzer topic.EntityAnalyzer, cfg config.EnrichmentConfig) {
	s.analyzer = analyzer
	s.enrichOpts = worker.Options{
		Workers:           cfg.Workers,
		MaxRetries:        max(cfg.MaxAttempts-1, 0),
		RateLimitRPS:      cfg.RatePerSec,
		Burst:             cfg.Burst,
		BackoffJitterFrac: 0.2,
	}
}

// Process extracts, filters and publishes the topics of one raw batch.
// Persisting is best effort; a publish failure fails the call.
func (s *Service) Process(ctx context.Context, raw topic.RawData) ([]topic.ScoredTopic, error) {
	if strings.TrimSpace(raw.Source) == "" {
		return nil, topic.Invalid("source", "is required")
	}
	if raw.Timestamp.IsZero() {
		return nil, topic.Invalid("timestamp", "is required")
	}

	cleaned := s.preprocessor.Clean(raw.Content.Texts())

	candidates, err := s.extractor.Extract(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to extract topics: %w", err)
	}

	topics := s.filter.Apply(candidates, BatchContext{Source: raw.Source, Region: raw.Region})

	s.persist(ctx, topics)

	if err := s.publishAll(ctx, topics); err != nil {
		return nil, err
	}

	s.logger.Info("processed raw batch",
		"source", raw.Source,
		"documents", len(cleaned),
		"candidates", len(candidates),
		"topics", len(topics),
	)
	return topics, nil
}

// DiscoverTrends collects every trend source, keeps the top-scored trends
// and enriches them when an analyzer is configured
func (s *Service) DiscoverTrends(ctx context.Context) ([]topic.ScoredTopic, error) {
	if s.aggregator == nil {
		return []topic.ScoredTopic{}, nil
	}

	candidates := s.aggregator.Collect(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortByScore(candidates)
	trends := s.filter.Apply(candidates, BatchContext{Source: TrendBatchSource})

	if s.analyzer != nil && len(trends) > 0 {
		s.enrichCategories(ctx, trends)
	}

	s.persist(ctx, trends)

	s.logger.Info("discovered trends", "candidates", len(candidates), "trends", len(trends))
	return trends, nil
}

// PublishAsync publishes topics in the background with its own deadline.
// Failures are logged.
func (s *Service) PublishAsync(topics []topic.ScoredTopic) {
	if len(topics) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout())
		defer cancel()

		if err := s.publishAll(ctx, topics); err != nil {
			s.logger.Error("background publish failed", "topics", len(topics), "error", err)
		}
	}()
}

// Wait blocks until background publishes have finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Topics returns previously discovered topics matching filter
func (s *Service) Topics(ctx context.Context, filter topic.TopicFilter) ([]topic.ScoredTopic, error) {
	if s.store == nil {
		return []topic.ScoredTopic{}, nil
	}
	topics, err := s.store.FindTopics(ctx, filter)
	if err != nil {
		return nil, topic.Upstream("topic store", err)
	}
	return topics, nil
}

func (s *Service) publishAll(ctx context.Context, topics []topic.ScoredTopic) error {
	for _, t := range topics {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal topic %q: %w", t.Term, err)
		}
		if _, err := s.publisher.Publish(ctx, s.config.DiscoveredSubject, payload); err != nil {
			return topic.Upstream("publisher", fmt.Errorf("failed to publish topic %q: %w", t.Term, err))
		}
	}
	return nil
}

func (s *Service) persist(ctx context.Context, topics []topic.ScoredTopic) {
	if s.store == nil || len(topics) == 0 {
		return
	}
	if err := s.store.SaveTopics(ctx, topics); err != nil {
		s.logger.Error("failed to persist topics", "topics", len(topics), "error", err)
	}
}

func (s *Service) enrichCategories(ctx context.Context, trends []topic.ScoredTopic) {
	results, err := worker.ProcessAll(ctx, trends,
		func(ctx context.Context, st topic.ScoredTopic) ([]topic.Entity, error) {
			return s.analyzer.Analyze(ctx, st.Term)
		},
		s.enrichOpts,
	)
	if err != nil {
		s.logger.Warn("category enrichment aborted", "error", err)
		return
	}

	enriched := 0
	for i, r := range results {
		if r.Err != nil {
			s.logger.Warn("category enrichment failed", "term", r.Input.Term, "error", r.Err)
			continue
		}
		if len(r.Output) == 0 {
			continue
		}
		trends[i].Metadata["entity_type"] = r.Output[0].Type
		trends[i].Metadata["salience"] = r.Output[0].Salience
		enriched++
	}
	s.logger.Debug("enriched trends", "enriched", enriched, "trends", len(trends))
}

func (s *Service) publishTimeout() time.Duration {
	if s.config.PublishTimeout > 0 {
		return s.config.PublishTimeout
	}
	return 30 * time.Second
}
