// internal/service/discovery/fetchers.go

package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"topicpulse/internal/domain/topic"
)

// Trend types recorded in trending-search metadata
const (
	TypeTrendingSearch = "trending_search"
	TypeDailyTrend     = "daily_trend"
)

// number of leading trending-search entries that get traffic details
const detailedTrends = 5

// TrendingSearchFetcher turns ranked trending-search lists into candidates.
// The primary list scores 1 - idx/len, the daily list 0.5 - idx/len; daily
// terms already present in the primary list are skipped.
type TrendingSearchFetcher struct {
	Feed   topic.TrendingFeed
	Region string
	now    func() time.Time
}

var _ topic.Fetcher = (*TrendingSearchFetcher)(nil)

// NewTrendingSearchFetcher creates a fetcher for one region
func NewTrendingSearchFetcher(feed topic.TrendingFeed, region string) *TrendingSearchFetcher {
	return &TrendingSearchFetcher{Feed: feed, Region: region, now: time.Now}
}

// Name returns the source name
func (f *TrendingSearchFetcher) Name() string { return topic.SourceGoogleTrends }

// Fetch reads both lists and ranks them
func (f *TrendingSearchFetcher) Fetch(ctx context.Context) ([]topic.Candidate, error) {
	primary, err := f.Feed.Trending(ctx, f.Region)
	if err != nil {
		return nil, fmt.Errorf("trending searches: %w", err)
	}
	daily, err := f.Feed.Daily(ctx, f.Region)
	if err != nil {
		return nil, fmt.Errorf("daily trends: %w", err)
	}

	ts := nowUTC(f.now)
	trends := make([]topic.Candidate, 0, len(primary)+len(daily))
	seen := make(map[string]struct{}, len(primary))

	for idx, t := range primary {
		seen[t.Term] = struct{}{}
		trends = append(trends, topic.Candidate{
			Term:      t.Term,
			Score:     1.0 - float64(idx)/float64(len(primary)),
			Timestamp: ts,
			Metadata: map[string]any{
				"source": topic.SourceGoogleTrends,
				"region": f.Region,
				"rank":   idx + 1,
				"type":   TypeTrendingSearch,
			},
		})
	}

	for idx, t := range daily {
		if _, dup := seen[t.Term]; dup {
			continue
		}
		trends = append(trends, topic.Candidate{
			Term:      t.Term,
			Score:     0.5 - float64(idx)/float64(len(daily)),
			Timestamp: ts,
			Metadata: map[string]any{
				"source": topic.SourceGoogleTrends,
				"region": f.Region,
				"rank":   idx + 1,
				"type":   TypeDailyTrend,
			},
		})
	}

	details := make(map[string]topic.TrendingTerm, len(primary))
	for _, t := range primary {
		details[t.Term] = t
	}
	for i := range trends[:min(detailedTrends, len(trends))] {
		d, ok := details[trends[i].Term]
		if !ok {
			continue
		}
		if d.ApproxTraffic != "" {
			trends[i].Metadata["approx_traffic"] = d.ApproxTraffic
		}
		if len(d.RelatedNews) > 0 {
			trends[i].Metadata["related_news"] = d.RelatedNews
		}
	}

	return trends, nil
}

// VideoPopularityFetcher scores most-popular videos by view count in
// millions. Scores are not clamped.
type VideoPopularityFetcher struct {
	Feed   topic.VideoFeed
	Region string
	now    func() time.Time
}

var _ topic.Fetcher = (*VideoPopularityFetcher)(nil)

// NewVideoPopularityFetcher creates a fetcher for one region
func NewVideoPopularityFetcher(feed topic.VideoFeed, region string) *VideoPopularityFetcher {
	return &VideoPopularityFetcher{Feed: feed, Region: region, now: time.Now}
}

// Name returns the source name
func (f *VideoPopularityFetcher) Name() string { return topic.SourceYouTube }

// Fetch reads the chart and converts each video
func (f *VideoPopularityFetcher) Fetch(ctx context.Context) ([]topic.Candidate, error) {
	videos, err := f.Feed.MostPopular(ctx, f.Region)
	if err != nil {
		return nil, fmt.Errorf("most popular videos: %w", err)
	}

	ts := nowUTC(f.now)
	trends := make([]topic.Candidate, 0, len(videos))
	for _, v := range videos {
		tags := v.Tags
		if tags == nil {
			tags = []string{}
		}
		trends = append(trends, topic.Candidate{
			Term:      v.Title,
			Score:     float64(v.Views) / 1_000_000,
			Timestamp: ts,
			Metadata: map[string]any{
				"source":         topic.SourceYouTube,
				"region":         f.Region,
				"video_category": v.CategoryID,
				"tags":           tags,
				"views":          v.Views,
				"likes":          v.Likes,
			},
		})
	}
	return trends, nil
}

// EntitySalienceFetcher scores the entities of a text blob by salience.
// With MinSalience > 0 only entities above it are kept and the sentiment is
// recorded.
type EntitySalienceFetcher struct {
	Source      string
	Text        topic.TextSource
	Analyzer    topic.EntityAnalyzer
	MinSalience float64
	now         func() time.Time
}

var _ topic.Fetcher = (*EntitySalienceFetcher)(nil)

// NewNewsFetcher keeps entities with salience above 0.1 and records
// sentiment
func NewNewsFetcher(text topic.TextSource, analyzer topic.EntityAnalyzer) *EntitySalienceFetcher {
	return &EntitySalienceFetcher{
		Source:      topic.SourceNews,
		Text:        text,
		Analyzer:    analyzer,
		MinSalience: 0.1,
		now:         time.Now,
	}
}

// NewSearchFetcher keeps every entity
func NewSearchFetcher(text topic.TextSource, analyzer topic.EntityAnalyzer) *EntitySalienceFetcher {
	return &EntitySalienceFetcher{
		Source:   topic.SourceSearch,
		Text:     text,
		Analyzer: analyzer,
		now:      time.Now,
	}
}

// Name returns the source name
func (f *EntitySalienceFetcher) Name() string { return f.Source }

// Fetch analyzes the current text. Empty text yields no candidates and
// the analyzer is not called.
func (f *EntitySalienceFetcher) Fetch(ctx context.Context) ([]topic.Candidate, error) {
	text, err := f.Text.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s text: %w", f.Source, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	entities, err := f.Analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s entities: %w", f.Source, err)
	}

	ts := nowUTC(f.now)
	withSentiment := f.MinSalience > 0
	trends := make([]topic.Candidate, 0, len(entities))
	for _, e := range entities {
		if withSentiment && e.Salience <= f.MinSalience {
			continue
		}
		meta := map[string]any{
			"source":   f.Source,
			"type":     e.Type,
			"mentions": e.Mentions,
		}
		if withSentiment {
			meta["sentiment"] = e.Sentiment
		}
		trends = append(trends, topic.Candidate{
			Term:      e.Name,
			Score:     e.Salience,
			Timestamp: ts,
			Metadata:  meta,
		})
	}
	return trends, nil
}

// JoinedText concatenates several text sources line by line. Failing
// sources are logged and skipped; it fails only when every source fails.
type JoinedText struct {
	Sources []topic.TextSource
	Logger  *slog.Logger
}

var _ topic.TextSource = (*JoinedText)(nil)

// Text returns the non-empty texts joined with newlines
func (j *JoinedText) Text(ctx context.Context) (string, error) {
	var (
		parts []string
		errs  []error
	)
	for _, s := range j.Sources {
		text, err := s.Text(ctx)
		if err != nil {
			errs = append(errs, err)
			if j.Logger != nil {
				j.Logger.Warn("text source failed", "error", err)
			}
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(errs) > 0 && len(errs) == len(j.Sources) {
		return "", errors.Join(errs...)
	}
	return strings.Join(parts, "\n"), nil
}

func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
