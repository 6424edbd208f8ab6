// internal/adapter/feeds/news_pages.go

package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

// NewsPages scrapes headlines from a list of news pages
type NewsPages struct {
	client   *http.Client
	pages    []string
	selector string
	maxChars int
	logger   *slog.Logger
}

var _ topic.TextSource = (*NewsPages)(nil)

// NewNewsPages wires an HTTP client; selector defaults to h1-h3
func NewNewsPages(cfg config.NewsSourceConfig, client *http.Client, logger *slog.Logger) *NewsPages {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	selector := cfg.Selector
	if selector == "" {
		selector = "h1, h2, h3"
	}

	return &NewsPages{
		client:   client,
		pages:    cfg.Pages,
		selector: selector,
		maxChars: cfg.MaxChars,
		logger:   logger.With("component", "news_pages"),
	}
}

// Text returns the headlines of every reachable page, one per line.
// It fails only when no page could be read.
func (n *NewsPages) Text(ctx context.Context) (string, error) {
	if len(n.pages) == 0 {
		return "", nil
	}

	var (
		headlines []string
		errs      []error
	)
	for _, page := range n.pages {
		doc, err := n.fetchDocument(ctx, page)
		if err != nil {
			n.logger.Warn("skipping news page", "page", page, "error", err)
			errs = append(errs, err)
			continue
		}

		doc.Find(n.selector).Each(func(_ int, s *goquery.Selection) {
			if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
				headlines = append(headlines, text)
			}
		})
	}

	if len(errs) == len(n.pages) {
		return "", errors.Join(errs...)
	}

	return truncateRunes(strings.Join(headlines, "\n"), n.maxChars), nil
}

func (n *NewsPages) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
