package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"topicpulse/internal/domain/topic"
	"topicpulse/internal/logging"
)

func TestBuildFindQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   topic.TopicFilter
		contains []string
		absent   []string
		args     []any
	}{
		{
			name:     "defaults",
			filter:   topic.TopicFilter{},
			contains: []string{"FROM discovered_topics", "WHERE score >= $1", "ORDER BY discovered_at DESC, score DESC", "LIMIT 100"},
			absent:   []string{"source =", "category ="},
			args:     []any{0.0},
		},
		{
			name:     "all filters",
			filter:   topic.TopicFilter{MinScore: 0.7, Source: "news", Category: topic.CategoryEntity, Limit: 5},
			contains: []string{"score >= $1", "source = $2", "category = $3", "LIMIT 5"},
			args:     []any{0.7, "news", "entity"},
		},
		{
			name:     "limit capped",
			filter:   topic.TopicFilter{Limit: 50000},
			contains: []string{"LIMIT 1000"},
			args:     []any{0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, args, err := buildFindQuery(tt.filter)
			if err != nil {
				t.Fatalf("buildFindQuery() error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("query %q missing %q", query, want)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(query, bad) {
					t.Errorf("query %q should not contain %q", query, bad)
				}
			}
			if fmt.Sprint(args) != fmt.Sprint(tt.args) {
				t.Errorf("args = %v, want %v", args, tt.args)
			}
		})
	}
}

func TestBuildInsert(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seen := now.Add(-time.Hour)
	ids := 0
	newID := func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}

	topics := []topic.ScoredTopic{
		{
			Candidate: topic.Candidate{Term: "ai", Score: 0.91, Timestamp: seen, Metadata: map[string]any{"source": "news", "region": "US"}},
			Category:  topic.CategoryEntity,
		},
		{
			Candidate: topic.Candidate{Term: "launch", Score: 0.8},
			Category:  topic.CategoryAction,
		},
	}

	query, args, err := buildInsert(topics, now, newID)
	if err != nil {
		t.Fatalf("buildInsert() error: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO discovered_topics") || !strings.Contains(query, "$16") {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 2*len(topicColumns) {
		t.Fatalf("len(args) = %d", len(args))
	}

	first, second := args[:8], args[8:]
	if first[0] != "id-1" || first[1] != "ai" || first[3] != "entity" || first[4] != "news" || first[5] != "US" {
		t.Errorf("first row = %v", first)
	}
	if first[7] != seen {
		t.Errorf("discovered_at = %v, want candidate timestamp", first[7])
	}
	if second[0] != "id-2" || second[4] != "" || second[7] != now {
		t.Errorf("second row = %v", second)
	}
	if string(second[6].([]byte)) != "null" {
		t.Errorf("nil metadata should marshal as null, got %s", second[6])
	}
}

func TestBuildSignalQueries(t *testing.T) {
	t.Parallel()

	query, args, err := buildSignalQuery("ai")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"FROM search_data s", "LEFT JOIN feedback f ON s.term = f.term", "s.term = $1", "GROUP BY s.search_volume, s.competition"} {
		if !strings.Contains(query, want) {
			t.Errorf("signal query %q missing %q", query, want)
		}
	}
	if len(args) != 1 || args[0] != "ai" {
		t.Errorf("args = %v", args)
	}

	query, args, err = buildTrainingQuery()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(query, "h.trend_score") || !strings.Contains(query, "h.success_rate") || len(args) != 0 {
		t.Errorf("training query %q args %v", query, args)
	}
}

func TestBuildRecentQueries(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := buildRecentQueries(500, since)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(query, "searched_at >= $1") || !strings.Contains(query, "LIMIT 500") {
		t.Errorf("query = %q", query)
	}
	if len(args) != 1 || args[0] != since {
		t.Errorf("args = %v", args)
	}

	query, _, err = buildRecentQueries(0, since)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(query, "LIMIT") {
		t.Errorf("zero limit should not render LIMIT: %q", query)
	}
}

type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

type countingStore struct {
	calls int
	rows  map[string]topic.Signals
	err   error
}

func (c *countingStore) Lookup(_ context.Context, term string) (topic.Signals, bool, error) {
	c.calls++
	if c.err != nil {
		return topic.Signals{}, false, c.err
	}
	s, ok := c.rows[term]
	return s, ok, nil
}

func TestCachedSignalStoreReadThrough(t *testing.T) {
	t.Parallel()

	store := &countingStore{rows: map[string]topic.Signals{"ai": {SearchVolume: 0.5, Competition: 0.2, HITLScore: 0.9}}}
	cache := NewCachedSignalStore(store, newMemKV(), time.Minute, logging.Discard())
	ctx := context.Background()

	for range 3 {
		s, found, err := cache.Lookup(ctx, "ai")
		if err != nil || !found || s.HITLScore != 0.9 {
			t.Fatalf("Lookup(ai) = %+v %v %v", s, found, err)
		}
	}
	for range 2 {
		s, found, err := cache.Lookup(ctx, "unknown")
		if err != nil || found || s != (topic.Signals{}) {
			t.Fatalf("Lookup(unknown) = %+v %v %v", s, found, err)
		}
	}
	if store.calls != 2 {
		t.Fatalf("store calls = %d, want 2 (one per term)", store.calls)
	}
}

func TestCachedSignalStoreBypassesCacheFaults(t *testing.T) {
	t.Parallel()

	kv := newMemKV()
	kv.getErr = errors.New("connection reset")
	kv.setErr = errors.New("connection reset")
	store := &countingStore{rows: map[string]topic.Signals{"ai": {SearchVolume: 1}}}
	cache := NewCachedSignalStore(store, kv, time.Minute, logging.Discard())

	s, found, err := cache.Lookup(context.Background(), "ai")
	if err != nil || !found || s.SearchVolume != 1 {
		t.Fatalf("Lookup() = %+v %v %v", s, found, err)
	}
}

func TestCachedSignalStoreDoesNotCacheStoreErrors(t *testing.T) {
	t.Parallel()

	kv := newMemKV()
	store := &countingStore{err: errors.New("db down")}
	cache := NewCachedSignalStore(store, kv, time.Minute, logging.Discard())

	if _, _, err := cache.Lookup(context.Background(), "ai"); err == nil {
		t.Fatal("expected store error")
	}
	if len(kv.data) != 0 {
		t.Fatalf("store errors must not be cached: %v", kv.data)
	}
}

func TestCachedSignalStoreIgnoresMalformedEntry(t *testing.T) {
	t.Parallel()

	kv := newMemKV()
	kv.data[signalKeyPrefix+"ai"] = []byte("{not json")
	store := &countingStore{rows: map[string]topic.Signals{"ai": {Competition: 0.3}}}
	cache := NewCachedSignalStore(store, kv, time.Minute, logging.Discard())

	s, found, err := cache.Lookup(context.Background(), "ai")
	if err != nil || !found || s.Competition != 0.3 || store.calls != 1 {
		t.Fatalf("Lookup() = %+v %v %v calls=%d", s, found, err, store.calls)
	}
}
