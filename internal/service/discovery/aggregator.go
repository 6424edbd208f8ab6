// internal/service/discovery/aggregator.go

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"topicpulse/internal/domain/topic"
)

// Aggregator fans out to every registered trend source and merges the
// results. A failing source contributes nothing; it never fails the batch.
type Aggregator struct {
	fetchers     []topic.Fetcher
	fetchersLock sync.RWMutex
	logger       *slog.Logger
}

// NewAggregator creates an aggregator over the given sources
func NewAggregator(logger *slog.Logger, fetchers ...topic.Fetcher) *Aggregator {
	return &Aggregator{
		fetchers: fetchers,
		logger:   logger.With("component", "aggregator"),
	}
}

// AddFetcher registers another source. Results keep registration order.
func (a *Aggregator) AddFetcher(f topic.Fetcher) {
	a.fetchersLock.Lock()
	defer a.fetchersLock.Unlock()
	a.fetchers = append(a.fetchers, f)
}

// Collect runs all sources concurrently and returns the concatenation of
// their candidates once every source has finished
func (a *Aggregator) Collect(ctx context.Context) []topic.Candidate {
	a.fetchersLock.RLock()
	fetchers := append([]topic.Fetcher(nil), a.fetchers...)
	a.fetchersLock.RUnlock()

	results := make([][]topic.Candidate, len(fetchers))

	var g errgroup.Group
	for i, f := range fetchers {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	var merged []topic.Candidate
	for i, batch := range results {
		clean := sanitize(batch)
		if dropped := len(batch) - len(clean); dropped > 0 {
			a.logger.Warn("dropped invalid candidates", "source", fetchers[i].Name(), "count", dropped)
		}
		merged = append(merged, clean...)
	}

	a.logger.Info("collected trends", "sources", len(fetchers), "candidates", len(merged))
	return merged
}

func (a *Aggregator) fetchOne(ctx context.Context, f topic.Fetcher) (out []topic.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("trend source panicked", "source", f.Name(), "panic", fmt.Sprint(r))
			out = nil
		}
	}()

	candidates, err := f.Fetch(ctx)
	if err != nil {
		a.logger.Error("trend source failed", "source", f.Name(), "error", err)
		return nil
	}
	return candidates
}

// sanitize drops empty terms and non-finite scores and raises negative
// scores to zero
func sanitize(batch []topic.Candidate) []topic.Candidate {
	clean := make([]topic.Candidate, 0, len(batch))
	for _, c := range batch {
		if strings.TrimSpace(c.Term) == "" {
			continue
		}
		if math.IsNaN(c.Score) || math.IsInf(c.Score, 0) {
			continue
		}
		if c.Score < 0 {
			c.Score = 0
		}
		clean = append(clean, c)
	}
	return clean
}
