package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
	"topicpulse/internal/logging"
)

type published struct {
	subject string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, payload: payload})
	return "msg-id", nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type fakeTopicStore struct {
	saved   []topic.ScoredTopic
	saveErr error
	found   []topic.ScoredTopic
	findErr error
	filter  topic.TopicFilter
}

func (f *fakeTopicStore) SaveTopics(_ context.Context, topics []topic.ScoredTopic) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, topics...)
	return nil
}

func (f *fakeTopicStore) FindTopics(_ context.Context, filter topic.TopicFilter) ([]topic.ScoredTopic, error) {
	f.filter = filter
	return f.found, f.findErr
}

func testDiscoveryConfig() config.DiscoveryConfig {
	cfg := config.Default().Discovery
	cfg.Analysis.MinTrendScore = 0.6
	cfg.Analysis.MaxTopicsPerBatch = 10
	return cfg
}

func quantumBatch() topic.RawData {
	return topic.RawData{
		Source: "twitter",
		Content: topic.Content{
			SocialMedia:   []topic.Post{{Text: "quantum ai breakthrough"}, {Text: "quantum computing ai research"}},
			SearchQueries: []string{"ai quantum supremacy"},
		},
		Timestamp: time.Now(),
	}
}

func TestProcessQuantumScenario(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	store := &fakeTopicStore{}
	svc := NewService(testDiscoveryConfig(), nil, pub, store, logging.Discard())

	topics, err := svc.Process(context.Background(), quantumBatch())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) == 0 {
		t.Fatal("expected topics")
	}
	for _, st := range topics {
		term := strings.ToLower(st.Term)
		if !strings.Contains(term, "quantum") && !strings.Contains(term, "ai") {
			t.Errorf("unexpected topic %q (score %v)", st.Term, st.Score)
		}
		if st.Score < 0.6 {
			t.Errorf("%q below threshold", st.Term)
		}
		if st.Metadata["source"] != "twitter" || st.Metadata["region"] != DefaultRegion {
			t.Errorf("metadata = %v", st.Metadata)
		}
	}

	if pub.count() != len(topics) {
		t.Fatalf("published %d, want %d", pub.count(), len(topics))
	}
	if pub.msgs[0].subject != "topics.discovered" {
		t.Errorf("subject = %q", pub.msgs[0].subject)
	}

	var decoded topic.TopicInput
	if err := json.Unmarshal(pub.msgs[0].payload, &decoded); err != nil {
		t.Fatalf("payload not decodable as prioritization input: %v", err)
	}
	if decoded.Term != topics[0].Term || decoded.Score != topics[0].Score {
		t.Errorf("decoded = %+v", decoded)
	}

	if len(store.saved) != len(topics) {
		t.Errorf("persisted %d topics, want %d", len(store.saved), len(topics))
	}
}

func TestProcessValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(testDiscoveryConfig(), nil, &fakePublisher{}, nil, logging.Discard())

	raw := quantumBatch()
	raw.Source = ""
	if _, err := svc.Process(context.Background(), raw); !topic.IsValidation(err) {
		t.Errorf("missing source: %v", err)
	}

	raw = quantumBatch()
	raw.Timestamp = time.Time{}
	if _, err := svc.Process(context.Background(), raw); !topic.IsValidation(err) {
		t.Errorf("missing timestamp: %v", err)
	}
}

func TestProcessPublishFailure(t *testing.T) {
	t.Parallel()

	svc := NewService(testDiscoveryConfig(), nil, &fakePublisher{err: errors.New("nats: connection closed")}, nil, logging.Discard())

	_, err := svc.Process(context.Background(), quantumBatch())
	if !topic.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestProcessStoreFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	svc := NewService(testDiscoveryConfig(), nil, pub, &fakeTopicStore{saveErr: errors.New("db down")}, logging.Discard())

	topics, err := svc.Process(context.Background(), quantumBatch())
	if err != nil {
		t.Fatalf("store failure should not fail the request: %v", err)
	}
	if pub.count() != len(topics) {
		t.Fatal("topics not published")
	}
}

func TestProcessEmptyContent(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	svc := NewService(testDiscoveryConfig(), nil, pub, nil, logging.Discard())

	topics, err := svc.Process(context.Background(), topic.RawData{Source: "web", Timestamp: time.Now()})
	if err != nil || len(topics) != 0 {
		t.Fatalf("got %v, %v", topics, err)
	}
	if pub.count() != 0 {
		t.Fatal("nothing should be published")
	}
}

type termAnalyzer struct {
	fail map[string]bool
}

func (a *termAnalyzer) Analyze(_ context.Context, text string) ([]topic.Entity, error) {
	if a.fail[text] {
		return nil, errors.New("analysis failed")
	}
	return []topic.Entity{{Name: text, Type: "EVENT", Salience: 0.9}}, nil
}

func TestDiscoverTrendsSortsFiltersAndEnriches(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(logging.Discard(),
		&stubFetcher{name: "news", candidates: []topic.Candidate{
			srcCand(topic.SourceNews, "election", 0.65),
		}},
		&stubFetcher{name: "youtube", candidates: []topic.Candidate{
			srcCand(topic.SourceYouTube, "launch stream", 3.1),
			srcCand(topic.SourceYouTube, "cooking", 0.2),
		}},
		&stubFetcher{name: "trends", candidates: []topic.Candidate{
			srcCand(topic.SourceGoogleTrends, "eclipse", 1.0),
			srcCand(topic.SourceGoogleTrends, "ai", 0.9),
		}},
	)

	cfg := testDiscoveryConfig()
	cfg.Analysis.MaxTopicsPerBatch = 3
	store := &fakeTopicStore{}
	svc := NewService(cfg, agg, &fakePublisher{}, store, logging.Discard())
	svc.EnableEnrichment(&termAnalyzer{fail: map[string]bool{"eclipse": true}}, config.EnrichmentConfig{Workers: 2, MaxAttempts: 1})

	trends, err := svc.DiscoverTrends(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	got := terms(trends)
	if got != "launch stream,eclipse,ai" {
		t.Fatalf("trends = %q, want top 3 by score", got)
	}
	for _, tr := range trends {
		if tr.Metadata["batch_source"] != TrendBatchSource {
			t.Errorf("batch source = %v", tr.Metadata["batch_source"])
		}
		if _, err := topic.ParseCategory(tr.Metadata["category"].(string)); err != nil {
			t.Errorf("category overwritten: %v", tr.Metadata["category"])
		}
	}
	if trends[0].Metadata["entity_type"] != "EVENT" || trends[0].Metadata["salience"] != 0.9 {
		t.Errorf("enrichment missing: %v", trends[0].Metadata)
	}
	if _, ok := trends[1].Metadata["entity_type"]; ok {
		t.Errorf("failed enrichment should leave trend unchanged: %v", trends[1].Metadata)
	}
	if len(store.saved) != 3 {
		t.Errorf("persisted %d trends", len(store.saved))
	}
}

func TestPublishAsync(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	svc := NewService(testDiscoveryConfig(), nil, pub, nil, logging.Discard())

	topics := []topic.ScoredTopic{
		{Candidate: cand("eclipse", 1, map[string]any{}), Category: topic.CategoryEntity},
		{Candidate: cand("ai", 0.9, map[string]any{}), Category: topic.CategoryEntity},
	}
	svc.PublishAsync(topics)
	svc.Wait()

	if pub.count() != 2 {
		t.Fatalf("published %d, want 2", pub.count())
	}
}

func TestTopicsWrapsStoreErrors(t *testing.T) {
	t.Parallel()

	store := &fakeTopicStore{findErr: errors.New("timeout")}
	svc := NewService(testDiscoveryConfig(), nil, &fakePublisher{}, store, logging.Discard())

	filter := topic.TopicFilter{MinScore: 0.5, Source: "news", Limit: 5}
	if _, err := svc.Topics(context.Background(), filter); !topic.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if store.filter != filter {
		t.Errorf("filter not forwarded: %+v", store.filter)
	}
}
