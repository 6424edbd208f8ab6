// internal/adapter/feeds/youtube.go

package feeds

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"topicpulse/internal/domain/topic"
)

// YouTubeFeed reads the most-popular chart of a region
type YouTubeFeed struct {
	service    *youtube.Service
	maxResults int64
}

var _ topic.VideoFeed = (*YouTubeFeed)(nil)

// NewYouTubeFeed creates the YouTube Data API client
func NewYouTubeFeed(ctx context.Context, apiKey string, maxResults int64, opts ...option.ClientOption) (*YouTubeFeed, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create youtube client: %w", err)
	}

	return &YouTubeFeed{service: svc, maxResults: maxResults}, nil
}

// MostPopular returns the chart in rank order
func (f *YouTubeFeed) MostPopular(ctx context.Context, region string) ([]topic.Video, error) {
	resp, err := f.service.Videos.
		List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		RegionCode(region).
		MaxResults(f.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list popular videos: %w", err)
	}

	videos := make([]topic.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}

		v := topic.Video{
			Title:      item.Snippet.Title,
			CategoryID: item.Snippet.CategoryId,
			Tags:       item.Snippet.Tags,
		}
		if item.Statistics != nil {
			v.Views = item.Statistics.ViewCount
			v.Likes = item.Statistics.LikeCount
		}
		videos = append(videos, v)
	}

	return videos, nil
}
