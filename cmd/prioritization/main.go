// cmd/prioritization/main.go

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"topicpulse/internal/adapter/messaging"
	"topicpulse/internal/adapter/ml"
	"topicpulse/internal/adapter/storage"
	"topicpulse/internal/bootstrap"
	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
	"topicpulse/internal/logging"
	"topicpulse/internal/server"
	"topicpulse/internal/server/handlers"
	"topicpulse/internal/service/prioritization"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format).With("service", "topic-prioritization")
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pcfg := cfg.Prioritization

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

	// Signal lookups, optionally cached
	signalStore := storage.NewSignalStore(db)
	var signals topic.SignalStore = signalStore
	if cfg.Redis.Enabled {
		rdb, err := bootstrap.Redis(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		signals = storage.NewCachedSignalStore(signalStore, storage.NewRedisKV(rdb), pcfg.CacheTTL, logger)
	}

	// Scoring
	httpClient := &http.Client{Timeout: 15 * time.Second}
	newPredictor := func(d topic.Deployment) topic.Predictor {
		return ml.NewPredictClient(d.EndpointURL, pcfg.Model.APIKey, httpClient)
	}

	weighted := &prioritization.WeightedScorer{Weights: pcfg.Weights}
	var scorer prioritization.Scorer = weighted
	if pcfg.Model.EndpointURL != "" {
		learned := &prioritization.LearnedScorer{
			Predictor: newPredictor(topic.Deployment{EndpointURL: pcfg.Model.EndpointURL}),
			ModelID:   "configured",
		}
		scorer = prioritization.NewFallbackScorer(learned, weighted, pcfg.PredictTimeout, logger)
		logger.Info("using deployed model", "endpoint", pcfg.Model.EndpointURL)
	}

	engine := prioritization.NewEngine(signals, publisher, scorer, pcfg, logger)

	// Retraining
	trainer := ml.NewTrainingClient(pcfg.Training.LauncherURL, pcfg.Model.APIKey, pcfg.Training.PollInterval, httpClient, logger)
	retrainer := prioritization.NewRetrainer(signalStore, trainer, engine, newPredictor, pcfg, logger)

	var cleanup []func(context.Context) error

	if pcfg.Training.LauncherURL != "" {
		scheduler, err := prioritization.NewScheduler(
			pcfg.Training.Cron,
			pcfg.Training.Location(),
			retrainer,
			pcfg.Training.Timeout,
			logger,
		)
		if err != nil {
			log.Fatalf("Failed to schedule retraining: %v", err)
		}
		scheduler.Start()
		cleanup = append(cleanup, scheduler.Stop)
	} else {
		logger.Warn("no training launcher configured, scheduled retraining disabled")
	}

	if pcfg.Intake.Enabled {
		intake := messaging.NewIntake(natsConn, pcfg.Intake.Subject, pcfg.Intake.Queue, engine, cfg.Server.RequestTimeout, logger)
		if err := intake.Start(); err != nil {
			log.Fatalf("Failed to subscribe to %s: %v", pcfg.Intake.Subject, err)
		}
		cleanup = append(cleanup, func(context.Context) error { return intake.Stop() })
	}

	cleanup = append(cleanup, func(ctx context.Context) error {
		return natsConn.FlushWithContext(ctx)
	})

	// Initialize HTTP server
	handler := handlers.NewPrioritizationHandler(engine, retrainer, pcfg.Training.Timeout, logger)
	httpServer := server.NewPrioritizationServer(cfg.Server, handler)

	if err := bootstrap.Serve(httpServer, cfg.Server, logger, cleanup...); err != nil {
		logger.Error("shutdown finished with errors", "error", err)
	}
}
