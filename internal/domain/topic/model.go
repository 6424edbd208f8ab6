// internal/domain/topic/model.go

package topic

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Well-known producer ids written to Metadata["source"]
const (
	SourceGoogleTrends = "google_trends"
	SourceYouTube      = "youtube"
	SourceNews         = "news"
	SourceSearch       = "search"
)

// Candidate is a scored term produced by an extractor or a trend fetcher,
// not yet filtered
type Candidate struct {
	Term      string         `json:"term"`
	Score     float64        `json:"score"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// Source returns the producer id recorded in the metadata, if any
func (c Candidate) Source() string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata["source"].(string)
	return s
}

// Category is the grammatical role assigned to a topic term
type Category string

const (
	CategoryEntity    Category = "entity"
	CategoryAction    Category = "action"
	CategoryAttribute Category = "attribute"
	CategoryOther     Category = "other"
)

// ParseCategory validates a category name against the closed set
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryEntity, CategoryAction, CategoryAttribute, CategoryOther:
		return c, nil
	}
	return "", &ValidationError{Field: "category", Message: fmt.Sprintf("unsupported category %q", s)}
}

// ScoredTopic is a candidate that passed the scorer/filter
type ScoredTopic struct {
	Candidate
	Category Category `json:"category"`
}

// Features is the fixed enrichment vector fed to a scorer
type Features struct {
	SearchVolume float64 `json:"search_volume"`
	Competition  float64 `json:"competition"`
	TrendScore   float64 `json:"trend_score"`
	HITLScore    float64 `json:"hitl_score"`
}

// Vector returns the features in model input order
func (f Features) Vector() [4]float64 {
	return [4]float64{f.SearchVolume, f.Competition, f.TrendScore, f.HITLScore}
}

// Map returns the features keyed by their wire names
func (f Features) Map() map[string]float64 {
	return map[string]float64{
		"search_volume": f.SearchVolume,
		"competition":   f.Competition,
		"trend_score":   f.TrendScore,
		"hitl_score":    f.HITLScore,
	}
}

// Signals is the auxiliary data stored per term
type Signals struct {
	SearchVolume float64
	Competition  float64
	HITLScore    float64
}

// TopicInput is a single topic submitted for prioritization
type TopicInput struct {
	Term      string         `json:"term"`
	Score     float64        `json:"score"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// PrioritizedTopic is the engine output
type PrioritizedTopic struct {
	Term          string         `json:"term"`
	OriginalScore float64        `json:"original_score"`
	PriorityScore float64        `json:"priority_score"`
	Published     bool           `json:"published"`
	Metadata      map[string]any `json:"metadata"`
}

// Post is a single social media item in a raw ingestion batch
type Post struct {
	Text string `json:"text"`
}

// Content holds the raw text fragments of an ingestion batch
type Content struct {
	SocialMedia   []Post   `json:"social_media,omitempty"`
	SearchQueries []string `json:"search_queries,omitempty"`
}

// Texts returns non-empty social posts followed by search queries
func (c Content) Texts() []string {
	texts := make([]string, 0, len(c.SocialMedia)+len(c.SearchQueries))
	for _, p := range c.SocialMedia {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	for _, q := range c.SearchQueries {
		if q != "" {
			texts = append(texts, q)
		}
	}
	return texts
}

// RawData is a raw ingestion batch
type RawData struct {
	Source    string    `json:"source"`
	Region    string    `json:"region,omitempty"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TopicFilter defines criteria for querying topic history
type TopicFilter struct {
	MinScore float64
	Source   string
	Category Category
	Limit    int
}

// Clamp01 bounds v to [0,1]; NaN maps to 0
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
