// cmd/discovery/main.go

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"

	"topicpulse/internal/adapter/feeds"
	"topicpulse/internal/adapter/messaging"
	"topicpulse/internal/adapter/nlp"
	"topicpulse/internal/adapter/storage"
	"topicpulse/internal/bootstrap"
	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
	"topicpulse/internal/logging"
	"topicpulse/internal/server"
	"topicpulse/internal/server/handlers"
	"topicpulse/internal/service/discovery"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format).With("service", "topic-discovery")
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize dependencies
	db, err := bootstrap.Database(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := bootstrap.NATS(cfg.NATS, logger)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	publisher, err := messaging.NewPublisher(natsConn, cfg.NATS.JetStream)
	if err != nil {
		log.Fatalf("Failed to initialize publisher: %v", err)
	}

	analyzer, err := nlp.NewFromConfig(ctx, cfg.LLM, logger)
	switch {
	case errors.Is(err, nlp.ErrNoProvider):
		logger.Warn("no entity analyzer configured, news and search sources disabled")
		analyzer = nil
	case err != nil:
		log.Fatalf("Failed to initialize entity analyzer: %v", err)
	}

	// Trend sources
	httpClient := &http.Client{Timeout: 15 * time.Second}
	aggregator := discovery.NewAggregator(logger, buildFetchers(ctx, cfg, db, httpClient, analyzer, logger)...)

	service := discovery.NewService(cfg.Discovery, aggregator, publisher, storage.NewTopicStore(db), logger)
	if analyzer != nil && cfg.Discovery.Enrichment.Enabled {
		service.EnableEnrichment(analyzer, cfg.Discovery.Enrichment)
	}

	// Initialize HTTP server
	httpServer := server.NewDiscoveryServer(cfg.Server, handlers.NewDiscoveryHandler(service, logger))

	err = bootstrap.Serve(httpServer, cfg.Server, logger,
		func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				service.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return errors.New("background publishes still running at shutdown")
			}
		},
		func(ctx context.Context) error {
			return natsConn.FlushWithContext(ctx)
		},
	)
	if err != nil {
		logger.Error("shutdown finished with errors", "error", err)
	}
}

func buildFetchers(
	ctx context.Context,
	cfg config.Config,
	db *pgxpool.Pool,
	client *http.Client,
	analyzer *nlp.Chain,
	logger *slog.Logger,
) []topic.Fetcher {
	sources := cfg.Discovery.Sources
	region := cfg.Discovery.Region

	var fetchers []topic.Fetcher

	if sources.Trends.Enabled {
		fetchers = append(fetchers, discovery.NewTrendingSearchFetcher(feeds.NewTrendsFeed(sources.Trends, client), region))
	}

	if sources.YouTube.Enabled {
		yt, err := feeds.NewYouTubeFeed(ctx, sources.YouTube.APIKey, sources.YouTube.MaxResults)
		if err != nil {
			logger.Error("youtube source disabled", "error", err)
		} else {
			fetchers = append(fetchers, discovery.NewVideoPopularityFetcher(yt, region))
		}
	}

	if analyzer == nil {
		return fetchers
	}

	if sources.News.Enabled {
		fetchers = append(fetchers, discovery.NewNewsFetcher(feeds.NewNewsPages(sources.News, client, logger), analyzer))
	}

	var texts []topic.TextSource
	if sources.Search.Enabled {
		texts = append(texts, storage.NewSearchQuerySource(db, sources.Search.Limit, sources.Search.Window))
	}
	if sources.Twitter.Enabled {
		texts = append(texts, feeds.NewTwitterSource(sources.Twitter, client, ""))
	}
	if len(texts) > 0 {
		fetchers = append(fetchers, discovery.NewSearchFetcher(&discovery.JoinedText{Sources: texts, Logger: logger}, analyzer))
	}

	return fetchers
}
