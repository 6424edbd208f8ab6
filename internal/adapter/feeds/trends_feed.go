// internal/adapter/feeds/trends_feed.go

package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

const userAgent = "topicpulse/1.0"

// TrendsFeed reads the trending-search RSS feeds (real-time and daily lists)
type TrendsFeed struct {
	realtimeURL string
	dailyURL    string
	parser      *gofeed.Parser
}

var _ topic.TrendingFeed = (*TrendsFeed)(nil)

// NewTrendsFeed wires an HTTP client; URLs may carry a %s region placeholder
func NewTrendsFeed(cfg config.TrendsSourceConfig, client *http.Client) *TrendsFeed {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &TrendsFeed{
		realtimeURL: cfg.RealtimeURL,
		dailyURL:    cfg.DailyURL,
		parser:      parser,
	}
}

// Trending returns the real-time ranked list
func (f *TrendsFeed) Trending(ctx context.Context, region string) ([]topic.TrendingTerm, error) {
	return f.fetch(ctx, regionURL(f.realtimeURL, region))
}

// Daily returns the daily ranked list
func (f *TrendsFeed) Daily(ctx context.Context, region string) ([]topic.TrendingTerm, error) {
	return f.fetch(ctx, regionURL(f.dailyURL, region))
}

func (f *TrendsFeed) fetch(ctx context.Context, feedURL string) ([]topic.TrendingTerm, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch trends feed: %w", err)
	}

	terms := make([]topic.TrendingTerm, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		terms = append(terms, topic.TrendingTerm{
			Term:          title,
			ApproxTraffic: firstValue(item.Extensions["ht"]["approx_traffic"]),
			RelatedNews:   newsTitles(item.Extensions["ht"]["news_item"]),
		})
	}

	return terms, nil
}

func regionURL(pattern, region string) string {
	if strings.Contains(pattern, "%s") {
		return fmt.Sprintf(pattern, region)
	}
	return pattern
}

func firstValue(values []ext.Extension) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func newsTitles(items []ext.Extension) []string {
	titles := []string{}
	for _, item := range items {
		if title := firstValue(item.Children["news_item_title"]); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
