// internal/service/discovery/extractor.go

package discovery

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

// Extractor scores terms of a preprocessed corpus by summed TF-IDF.
//
// TF is the term count normalized by document length. IDF is the smoothed
// ln((1+n)/(1+df)) + 1, so a term present in every document keeps weight 1.
// Terms whose document frequency is below MinDocumentFrequency (count) or
// above MaxDocumentFrequency (proportion of documents) are ignored.
//
// Output is sorted by score descending; equal scores are ordered by term.
type Extractor struct {
	MinDocumentFrequency int
	MaxDocumentFrequency float64

	sem *semaphore.Weighted
	now func() time.Time
}

// NewExtractor creates an extractor that runs at most GOMAXPROCS
// extractions at a time
func NewExtractor(cfg config.NLPConfig) *Extractor {
	return &Extractor{
		MinDocumentFrequency: cfg.MinDocumentFrequency,
		MaxDocumentFrequency: cfg.MaxDocumentFrequency,
		sem:                  semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		now:                  time.Now,
	}
}

// Extract returns one candidate per surviving term with a positive score
func (e *Extractor) Extract(ctx context.Context, corpus []string) ([]topic.Candidate, error) {
	if len(corpus) == 0 {
		return nil, nil
	}

	if e.sem != nil {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("extractor busy: %w", err)
		}
		defer e.sem.Release(1)
	}

	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		docs[i] = strings.Fields(text)

		seen := make(map[string]struct{}, len(docs[i]))
		for _, term := range docs[i] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := float64(len(docs))
	maxDocs := e.MaxDocumentFrequency * n
	if e.MaxDocumentFrequency <= 0 {
		maxDocs = n
	}

	idf := make(map[string]float64, len(df))
	for term, count := range df {
		if count < e.MinDocumentFrequency || float64(count) > maxDocs {
			continue
		}
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	importance := make(map[string]float64, len(idf))
	for _, doc := range docs {
		if len(doc) == 0 {
			continue
		}
		docLen := float64(len(doc))

		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term, count := range tf {
			w, ok := idf[term]
			if !ok {
				continue
			}
			importance[term] += float64(count) / docLen * w
		}
	}

	ts := e.timestamp()
	candidates := make([]topic.Candidate, 0, len(importance))
	for term, score := range importance {
		if score <= 0 {
			continue
		}
		candidates = append(candidates, topic.Candidate{
			Term:      term,
			Score:     score,
			Timestamp: ts,
			Metadata:  map[string]any{},
		})
	}

	slices.SortStableFunc(candidates, compareCandidates)
	return candidates, nil
}

func (e *Extractor) timestamp() time.Time {
	if e.now == nil {
		return time.Now().UTC()
	}
	return e.now().UTC()
}

// compareCandidates orders by score descending, then by term
func compareCandidates(a, b topic.Candidate) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return strings.Compare(a.Term, b.Term)
}
