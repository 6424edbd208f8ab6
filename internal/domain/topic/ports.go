// internal/domain/topic/ports.go

package topic

import (
	"context"
	"time"
)

// Fetcher produces trend candidates from one signal source
type Fetcher interface {
	// Name returns the source name used in logs
	Name() string

	// Fetch returns the current candidates of this source
	Fetch(ctx context.Context) ([]Candidate, error)
}

// Tagger assigns a grammatical category to a term
type Tagger interface {
	Tag(term string) Category
}

// Publisher sends payloads to the messaging sink. Delivery is at-least-once.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) (string, error)
}

// Entity is one result of an entity/salience analysis
type Entity struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Salience  float64 `json:"salience"`
	Sentiment float64 `json:"sentiment"`
	Mentions  int     `json:"mentions"`
}

// EntityAnalyzer extracts salient entities from free text
type EntityAnalyzer interface {
	Analyze(ctx context.Context, text string) ([]Entity, error)
}

// TextSource supplies the text blob an entity fetcher analyzes
type TextSource interface {
	Text(ctx context.Context) (string, error)
}

// TrendingTerm is one entry of a ranked trending-search list
type TrendingTerm struct {
	Term          string
	ApproxTraffic string
	RelatedNews   []string
}

// TrendingFeed reads ranked trending-search lists for a region
type TrendingFeed interface {
	// Trending returns the primary (real-time) ranked list
	Trending(ctx context.Context, region string) ([]TrendingTerm, error)

	// Daily returns the secondary daily ranked list
	Daily(ctx context.Context, region string) ([]TrendingTerm, error)
}

// Video is one entry of a most-popular video feed
type Video struct {
	Title      string
	CategoryID string
	Tags       []string
	Views      uint64
	Likes      uint64
}

// VideoFeed reads the most-popular videos of a region
type VideoFeed interface {
	MostPopular(ctx context.Context, region string) ([]Video, error)
}

// SignalStore looks up aggregated historical signals by exact term
type SignalStore interface {
	// Lookup returns found=false when no row exists for the term
	Lookup(ctx context.Context, term string) (Signals, bool, error)
}

// TrainingRow is one joined feature/outcome row
type TrainingRow struct {
	Features Features
	Label    float64
}

// TrainingSource pulls historical training rows
type TrainingSource interface {
	TrainingRows(ctx context.Context) ([]TrainingRow, error)
}

// Predictor calls a deployed prediction endpoint
type Predictor interface {
	Predict(ctx context.Context, features [4]float64) (float64, error)
}

// Hyperparams configure an external training job
type Hyperparams struct {
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
}

// Deployment references a trained and deployed scorer
type Deployment struct {
	ModelID     string
	EndpointURL string
	DeployedAt  time.Time
}

// Trainer launches a training job and waits for its deployment
type Trainer interface {
	Train(ctx context.Context, features [][4]float64, labels []float64, params Hyperparams) (Deployment, error)
}

// TopicStore persists discovered topics for history queries
type TopicStore interface {
	SaveTopics(ctx context.Context, topics []ScoredTopic) error
	FindTopics(ctx context.Context, filter TopicFilter) ([]ScoredTopic, error)
}
