// internal/service/discovery/filter.go

package discovery

import (
	"cmp"
	"maps"
	"slices"

	"topicpulse/internal/domain/topic"
)

// DefaultRegion is used when a batch carries no region
const DefaultRegion = "global"

// BatchContext labels a batch of candidates passed through the filter
type BatchContext struct {
	Source string
	Region string
}

// Filter applies the trend-score threshold and batch cap, and tags each kept
// candidate with a category
type Filter struct {
	MinTrendScore     float64
	MaxTopicsPerBatch int
	Tagger            topic.Tagger
}

// Apply walks candidates in the given order and stops as soon as
// MaxTopicsPerBatch candidates have been kept. The remaining candidates are
// not evaluated, so callers that want the top N must sort first.
func (f *Filter) Apply(candidates []topic.Candidate, batch BatchContext) []topic.ScoredTopic {
	region := batch.Region
	if region == "" {
		region = DefaultRegion
	}

	kept := make([]topic.ScoredTopic, 0, min(len(candidates), max(f.MaxTopicsPerBatch, 0)))
	for _, c := range candidates {
		if len(kept) >= f.MaxTopicsPerBatch {
			break
		}
		if c.Score < f.MinTrendScore {
			continue
		}

		category := f.Tagger.Tag(c.Term)

		meta := make(map[string]any, len(c.Metadata)+4)
		maps.Copy(meta, c.Metadata)
		if s, _ := meta["source"].(string); s == "" {
			meta["source"] = batch.Source
		}
		if r, _ := meta["region"].(string); r == "" {
			meta["region"] = region
		}
		meta["category"] = string(category)
		meta["batch_source"] = batch.Source

		c.Metadata = meta
		kept = append(kept, topic.ScoredTopic{Candidate: c, Category: category})
	}

	return kept
}

// SortByScore sorts candidates by score descending. Equal scores keep their
// original order.
func SortByScore(candidates []topic.Candidate) {
	slices.SortStableFunc(candidates, func(a, b topic.Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
