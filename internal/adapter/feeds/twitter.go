// internal/adapter/feeds/twitter.go

package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

const twitterHost = "https://api.twitter.com"

type bearerAuth struct {
	token string
}

// Add sets the bearer token on every API request
func (a bearerAuth) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// TwitterSource joins the text of recent tweets matching a query
type TwitterSource struct {
	client     *twitter.Client
	query      string
	maxResults int
}

var _ topic.TextSource = (*TwitterSource)(nil)

// NewTwitterSource creates a recent-search text source
func NewTwitterSource(cfg config.TwitterSourceConfig, client *http.Client, host string) *TwitterSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if host == "" {
		host = twitterHost
	}
	maxResults := cfg.MaxResults
	if maxResults < 10 || maxResults > 100 {
		maxResults = 50
	}

	return &TwitterSource{
		client: &twitter.Client{
			Authorizer: bearerAuth{token: cfg.BearerToken},
			Client:     client,
			Host:       host,
		},
		query:      cfg.Query,
		maxResults: maxResults,
	}
}

// Text returns the tweet texts, one per line
func (s *TwitterSource) Text(ctx context.Context) (string, error) {
	resp, err := s.client.TweetRecentSearch(ctx, s.query, twitter.TweetRecentSearchOpts{
		MaxResults: s.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("recent search: %w", err)
	}
	if resp == nil || resp.Raw == nil {
		return "", nil
	}

	texts := make([]string, 0, len(resp.Raw.Tweets))
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil {
			continue
		}
		if text := strings.TrimSpace(tweet.Text); text != "" {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "\n"), nil
}
