// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "TOPICPULSE_CONFIG"

// Config holds all application configuration
type Config struct {
	Environment    string               `yaml:"environment"`
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Database       DatabaseConfig       `yaml:"database"`
	NATS           NATSConfig           `yaml:"nats"`
	Redis          RedisConfig          `yaml:"redis"`
	Discovery      DiscoveryConfig      `yaml:"discovery"`
	Prioritization PrioritizationConfig `yaml:"prioritization"`
	LLM            LLMConfig            `yaml:"llm"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CorsOrigins     []string      `yaml:"cors_origins"`
}

// LoggingConfig selects level and output format
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
	SSLMode      string        `yaml:"ssl_mode"`
}

// DSN renders the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode, d.MaxOpenConns,
	)
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string        `yaml:"url"`
	MaxReconnects  int           `yaml:"max_reconnects"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	JetStream      bool          `yaml:"jetstream"`
}

// RedisConfig holds the signal cache connection
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DiscoveryConfig holds topic discovery configuration
type DiscoveryConfig struct {
	NLP               NLPConfig        `yaml:"nlp"`
	Analysis          AnalysisConfig   `yaml:"analysis"`
	DiscoveredSubject string           `yaml:"discovered_subject"`
	Region            string           `yaml:"region"`
	PublishTimeout    time.Duration    `yaml:"publish_timeout"`
	Sources           SourcesConfig    `yaml:"sources"`
	Enrichment        EnrichmentConfig `yaml:"enrichment"`
}

// NLPConfig holds preprocessing and extraction bounds
type NLPConfig struct {
	MinTokenLength       int      `yaml:"min_token_length"`
	MaxTokenLength       int      `yaml:"max_token_length"`
	ExtraStopWords       []string `yaml:"extra_stop_words"`
	MinDocumentFrequency int      `yaml:"min_document_frequency"`
	MaxDocumentFrequency float64  `yaml:"max_document_frequency"`
}

// AnalysisConfig holds filter thresholds
type AnalysisConfig struct {
	MinTrendScore     float64 `yaml:"min_trend_score"`
	MaxTopicsPerBatch int     `yaml:"max_topics_per_batch"`
}

// SourcesConfig toggles and configures the trend sources
type SourcesConfig struct {
	Trends  TrendsSourceConfig  `yaml:"trends"`
	YouTube YouTubeSourceConfig `yaml:"youtube"`
	News    NewsSourceConfig    `yaml:"news"`
	Search  SearchSourceConfig  `yaml:"search"`
	Twitter TwitterSourceConfig `yaml:"twitter"`
}

// TrendsSourceConfig configures the trending-search RSS feeds
type TrendsSourceConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RealtimeURL string `yaml:"realtime_url"`
	DailyURL    string `yaml:"daily_url"`
}

// YouTubeSourceConfig configures the most-popular video feed
type YouTubeSourceConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	MaxResults int64  `yaml:"max_results"`
}

// NewsSourceConfig configures the headline scraper
type NewsSourceConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Pages    []string `yaml:"pages"`
	Selector string   `yaml:"selector"`
	MaxChars int      `yaml:"max_chars"`
}

// SearchSourceConfig configures the recent search query source
type SearchSourceConfig struct {
	Enabled bool          `yaml:"enabled"`
	Limit   uint64        `yaml:"limit"`
	Window  time.Duration `yaml:"window"`
}

// TwitterSourceConfig configures the social text source
type TwitterSourceConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BearerToken string `yaml:"bearer_token"`
	Query       string `yaml:"query"`
	MaxResults  int    `yaml:"max_results"`
}

// EnrichmentConfig configures trend category enrichment
type EnrichmentConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Workers     int     `yaml:"workers"`
	RatePerSec  float64 `yaml:"rate_per_sec"`
	Burst       int     `yaml:"burst"`
	MaxAttempts int     `yaml:"max_attempts"`
}

// PrioritizationConfig holds scoring and retraining configuration
type PrioritizationConfig struct {
	Weights            WeightsConfig  `yaml:"weights"`
	MinPriorityScore   float64        `yaml:"min_priority_score"`
	PrioritizedSubject string         `yaml:"prioritized_subject"`
	PredictTimeout     time.Duration  `yaml:"predict_timeout"`
	Model              ModelConfig    `yaml:"model"`
	Training           TrainingConfig `yaml:"training"`
	CacheTTL           time.Duration  `yaml:"cache_ttl"`
	Intake             IntakeConfig   `yaml:"intake"`
}

// WeightsConfig holds the weighted fallback scorer coefficients
type WeightsConfig struct {
	SearchVolume float64 `yaml:"search_volume"`
	Competition  float64 `yaml:"competition"`
	TrendScore   float64 `yaml:"trend_score"`
	HITLScore    float64 `yaml:"hitl_score"`
}

// ModelConfig points at an already deployed prediction endpoint
type ModelConfig struct {
	EndpointURL string `yaml:"endpoint_url"`
	APIKey      string `yaml:"api_key"`
}

// TrainingConfig holds retraining schedule parameters
type TrainingConfig struct {
	LauncherURL  string        `yaml:"launcher_url"`
	Cron         string        `yaml:"cron"`
	Timezone     string        `yaml:"timezone"`
	MinSamples   int           `yaml:"min_samples"`
	Epochs       int           `yaml:"epochs"`
	BatchSize    int           `yaml:"batch_size"`
	LearningRate float64       `yaml:"learning_rate"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Location resolves the training timezone, falling back to UTC
func (t TrainingConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(t.Timezone); err == nil && t.Timezone != "" {
		return loc
	}
	return time.UTC
}

// IntakeConfig configures the queue subscription on discovered topics
type IntakeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Subject string `yaml:"subject"`
	Queue   string `yaml:"queue"`
}

// LLMConfig holds the entity analyzer providers, tried in order
type LLMConfig struct {
	Gemini    ProviderConfig `yaml:"gemini"`
	OpenAI    ProviderConfig `yaml:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic"`
	Timeout   time.Duration  `yaml:"timeout"`
}

// ProviderConfig holds a single LLM provider
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Load builds configuration from defaults, an optional YAML file named by
// TOPICPULSE_CONFIG and environment variables, in that order
func Load() (Config, error) {
	config := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.applyEnvOverrides()

	return config, validate(config)
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Environment: "development",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CorsOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Password:     "postgres",
			Database:     "topicpulse",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxLifetime:  5 * time.Minute,
			SSLMode:      "disable",
		},
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			MaxReconnects:  10,
			ReconnectWait:  1 * time.Second,
			ConnectTimeout: 2 * time.Second,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Discovery: DiscoveryConfig{
			NLP: NLPConfig{
				MinTokenLength:       2,
				MaxTokenLength:       50,
				MinDocumentFrequency: 1,
				MaxDocumentFrequency: 1.0,
			},
			Analysis: AnalysisConfig{
				MinTrendScore:     0.6,
				MaxTopicsPerBatch: 50,
			},
			DiscoveredSubject: "topics.discovered",
			Region:            "US",
			PublishTimeout:    30 * time.Second,
			Sources: SourcesConfig{
				Trends: TrendsSourceConfig{
					Enabled:     true,
					RealtimeURL: "https://trends.google.com/trending/rss?geo=%s",
					DailyURL:    "https://trends.google.com/trends/trendingsearches/daily/rss?geo=%s",
				},
				YouTube: YouTubeSourceConfig{MaxResults: 50},
				News: NewsSourceConfig{
					Selector: "h1, h2, h3",
					MaxChars: 20000,
				},
				Search:  SearchSourceConfig{Limit: 500, Window: 24 * time.Hour},
				Twitter: TwitterSourceConfig{Query: "trending -is:retweet lang:en", MaxResults: 50},
			},
			Enrichment: EnrichmentConfig{
				Workers:     4,
				RatePerSec:  5,
				Burst:       5,
				MaxAttempts: 3,
			},
		},
		Prioritization: PrioritizationConfig{
			Weights: WeightsConfig{
				SearchVolume: 0.2,
				Competition:  0.2,
				TrendScore:   0.5,
				HITLScore:    0.1,
			},
			MinPriorityScore:   0.7,
			PrioritizedSubject: "topics.prioritized",
			PredictTimeout:     2 * time.Second,
			Training: TrainingConfig{
				Cron:         "0 0 * * 0",
				Timezone:     "UTC",
				MinSamples:   100,
				Epochs:       100,
				BatchSize:    32,
				LearningRate: 0.001,
				PollInterval: 30 * time.Second,
				Timeout:      2 * time.Hour,
			},
			CacheTTL: 10 * time.Minute,
			Intake: IntakeConfig{
				Subject: "topics.discovered",
				Queue:   "prioritization",
			},
		},
		LLM: LLMConfig{
			Gemini:    ProviderConfig{Model: "gemini-2.0-flash"},
			OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
			Anthropic: ProviderConfig{Model: "claude-haiku-4-5"},
			Timeout:   30 * time.Second,
		},
	}
}

func (c *Config) applyEnvOverrides() {
	c.Environment = getEnv("APP_ENV", c.Environment)

	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.RequestTimeout = getEnvAsDuration("SERVER_REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.CorsOrigins = getEnvAsSlice("SERVER_CORS_ORIGINS", c.Server.CorsOrigins)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MaxLifetime = getEnvAsDuration("DB_MAX_LIFETIME", c.Database.MaxLifetime)
	c.Database.SSLMode = getEnv("DB_SSL_MODE", c.Database.SSLMode)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.MaxReconnects = getEnvAsInt("NATS_MAX_RECONNECTS", c.NATS.MaxReconnects)
	c.NATS.ReconnectWait = getEnvAsDuration("NATS_RECONNECT_WAIT", c.NATS.ReconnectWait)
	c.NATS.ConnectTimeout = getEnvAsDuration("NATS_CONNECT_TIMEOUT", c.NATS.ConnectTimeout)
	c.NATS.JetStream = getEnvAsBool("NATS_JETSTREAM", c.NATS.JetStream)

	c.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)

	d := &c.Discovery
	d.NLP.MinTokenLength = getEnvAsInt("NLP_MIN_TOKEN_LENGTH", d.NLP.MinTokenLength)
	d.NLP.MaxTokenLength = getEnvAsInt("NLP_MAX_TOKEN_LENGTH", d.NLP.MaxTokenLength)
	d.NLP.ExtraStopWords = getEnvAsSlice("NLP_EXTRA_STOP_WORDS", d.NLP.ExtraStopWords)
	d.NLP.MinDocumentFrequency = getEnvAsInt("NLP_MIN_DOCUMENT_FREQUENCY", d.NLP.MinDocumentFrequency)
	d.NLP.MaxDocumentFrequency = getEnvAsFloat("NLP_MAX_DOCUMENT_FREQUENCY", d.NLP.MaxDocumentFrequency)
	d.Analysis.MinTrendScore = getEnvAsFloat("ANALYSIS_MIN_TREND_SCORE", d.Analysis.MinTrendScore)
	d.Analysis.MaxTopicsPerBatch = getEnvAsInt("ANALYSIS_MAX_TOPICS_PER_BATCH", d.Analysis.MaxTopicsPerBatch)
	d.DiscoveredSubject = getEnv("DISCOVERY_SUBJECT", d.DiscoveredSubject)
	d.Region = getEnv("DISCOVERY_REGION", d.Region)
	d.PublishTimeout = getEnvAsDuration("DISCOVERY_PUBLISH_TIMEOUT", d.PublishTimeout)
	d.Sources.Trends.Enabled = getEnvAsBool("SOURCE_TRENDS_ENABLED", d.Sources.Trends.Enabled)
	d.Sources.YouTube.Enabled = getEnvAsBool("SOURCE_YOUTUBE_ENABLED", d.Sources.YouTube.Enabled)
	d.Sources.YouTube.APIKey = getEnv("YOUTUBE_API_KEY", d.Sources.YouTube.APIKey)
	d.Sources.News.Enabled = getEnvAsBool("SOURCE_NEWS_ENABLED", d.Sources.News.Enabled)
	d.Sources.News.Pages = getEnvAsSlice("SOURCE_NEWS_PAGES", d.Sources.News.Pages)
	d.Sources.Search.Enabled = getEnvAsBool("SOURCE_SEARCH_ENABLED", d.Sources.Search.Enabled)
	d.Sources.Twitter.Enabled = getEnvAsBool("SOURCE_TWITTER_ENABLED", d.Sources.Twitter.Enabled)
	d.Sources.Twitter.BearerToken = getEnv("TWITTER_BEARER_TOKEN", d.Sources.Twitter.BearerToken)
	d.Enrichment.Enabled = getEnvAsBool("ENRICHMENT_ENABLED", d.Enrichment.Enabled)
	d.Enrichment.Workers = getEnvAsInt("ENRICHMENT_WORKERS", d.Enrichment.Workers)

	p := &c.Prioritization
	p.Weights.SearchVolume = getEnvAsFloat("WEIGHT_SEARCH_VOLUME", p.Weights.SearchVolume)
	p.Weights.Competition = getEnvAsFloat("WEIGHT_COMPETITION", p.Weights.Competition)
	p.Weights.TrendScore = getEnvAsFloat("WEIGHT_TREND_SCORE", p.Weights.TrendScore)
	p.Weights.HITLScore = getEnvAsFloat("WEIGHT_HITL_SCORE", p.Weights.HITLScore)
	p.MinPriorityScore = getEnvAsFloat("MIN_PRIORITY_SCORE", p.MinPriorityScore)
	p.PrioritizedSubject = getEnv("PRIORITIZATION_SUBJECT", p.PrioritizedSubject)
	p.PredictTimeout = getEnvAsDuration("PREDICT_TIMEOUT", p.PredictTimeout)
	p.Model.EndpointURL = getEnv("MODEL_ENDPOINT_URL", p.Model.EndpointURL)
	p.Model.APIKey = getEnv("MODEL_API_KEY", p.Model.APIKey)
	p.Training.LauncherURL = getEnv("TRAINING_LAUNCHER_URL", p.Training.LauncherURL)
	p.Training.Cron = getEnv("TRAINING_CRON", p.Training.Cron)
	p.Training.Timezone = getEnv("TRAINING_TIMEZONE", p.Training.Timezone)
	p.Training.MinSamples = getEnvAsInt("TRAINING_MIN_SAMPLES", p.Training.MinSamples)
	p.CacheTTL = getEnvAsDuration("SIGNAL_CACHE_TTL", p.CacheTTL)
	p.Intake.Enabled = getEnvAsBool("INTAKE_ENABLED", p.Intake.Enabled)
	p.Intake.Subject = getEnv("INTAKE_SUBJECT", p.Intake.Subject)

	c.LLM.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.LLM.Gemini.APIKey)
	c.LLM.Gemini.Model = getEnv("GEMINI_MODEL", c.LLM.Gemini.Model)
	c.LLM.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.LLM.OpenAI.APIKey)
	c.LLM.OpenAI.Model = getEnv("OPENAI_MODEL", c.LLM.OpenAI.Model)
	c.LLM.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", c.LLM.Anthropic.APIKey)
	c.LLM.Anthropic.Model = getEnv("ANTHROPIC_MODEL", c.LLM.Anthropic.Model)
}

// validate checks if config is valid
func validate(config Config) error {
	var errs []error

	nlp := config.Discovery.NLP
	if nlp.MinTokenLength < 1 {
		errs = append(errs, fmt.Errorf("nlp.min_token_length must be >= 1"))
	}
	if nlp.MaxTokenLength < nlp.MinTokenLength {
		errs = append(errs, fmt.Errorf("nlp.max_token_length must be >= min_token_length"))
	}
	if nlp.MinDocumentFrequency < 1 {
		errs = append(errs, fmt.Errorf("nlp.min_document_frequency must be >= 1"))
	}
	if nlp.MaxDocumentFrequency <= 0 || nlp.MaxDocumentFrequency > 1 {
		errs = append(errs, fmt.Errorf("nlp.max_document_frequency must be in (0,1]"))
	}

	analysis := config.Discovery.Analysis
	if !isFinite(analysis.MinTrendScore) || analysis.MinTrendScore < 0 {
		errs = append(errs, fmt.Errorf("analysis.min_trend_score must be a non-negative number"))
	}
	if analysis.MaxTopicsPerBatch < 1 {
		errs = append(errs, fmt.Errorf("analysis.max_topics_per_batch must be >= 1"))
	}
	if config.Discovery.DiscoveredSubject == "" {
		errs = append(errs, fmt.Errorf("discovery.discovered_subject is required"))
	}

	p := config.Prioritization
	for name, w := range map[string]float64{
		"search_volume": p.Weights.SearchVolume,
		"competition":   p.Weights.Competition,
		"trend_score":   p.Weights.TrendScore,
		"hitl_score":    p.Weights.HITLScore,
	} {
		if !isFinite(w) {
			errs = append(errs, fmt.Errorf("prioritization.weights.%s must be finite", name))
		}
	}
	if !isFinite(p.MinPriorityScore) {
		errs = append(errs, fmt.Errorf("prioritization.min_priority_score must be finite"))
	}
	if p.PrioritizedSubject == "" {
		errs = append(errs, fmt.Errorf("prioritization.prioritized_subject is required"))
	}
	if p.PredictTimeout <= 0 {
		errs = append(errs, fmt.Errorf("prioritization.predict_timeout must be positive"))
	}
	if p.Training.MinSamples < 1 {
		errs = append(errs, fmt.Errorf("prioritization.training.min_samples must be >= 1"))
	}
	if _, err := cron.ParseStandard(p.Training.Cron); err != nil {
		errs = append(errs, fmt.Errorf("prioritization.training.cron: %w", err))
	}
	if _, err := time.LoadLocation(p.Training.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("prioritization.training.timezone: %w", err))
	}

	if config.Discovery.Enrichment.Enabled && config.Discovery.Enrichment.Workers < 1 {
		errs = append(errs, fmt.Errorf("discovery.enrichment.workers must be >= 1"))
	}

	return errors.Join(errs...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
