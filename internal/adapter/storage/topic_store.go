// internal/adapter/storage/topic_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"topicpulse/internal/domain/topic"
)

const (
	topicsTable       = "discovered_topics"
	defaultFindLimit  = 100
	maxFindLimit      = 1000
	insertChunkTopics = 500
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var topicColumns = []string{
	"id", "term", "score", "category", "source", "region", "metadata", "discovered_at",
}

// TopicStore implements topic history storage
type TopicStore struct {
	db    *pgxpool.Pool
	newID func() string
	now   func() time.Time
}

var _ topic.TopicStore = (*TopicStore)(nil)

// NewTopicStore creates a new topic store
func NewTopicStore(db *pgxpool.Pool) *TopicStore {
	return &TopicStore{
		db:    db,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

// SaveTopics appends a batch of discovered topics
func (s *TopicStore) SaveTopics(ctx context.Context, topics []topic.ScoredTopic) error {
	for start := 0; start < len(topics); start += insertChunkTopics {
		end := min(start+insertChunkTopics, len(topics))

		query, args, err := buildInsert(topics[start:end], s.now().UTC(), s.newID)
		if err != nil {
			return err
		}

		if _, err := s.db.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	return nil
}

// FindTopics finds topics matching the filter, newest first
func (s *TopicStore) FindTopics(ctx context.Context, filter topic.TopicFilter) ([]topic.ScoredTopic, error) {
	query, args, err := buildFindQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	topics := []topic.ScoredTopic{}
	for rows.Next() {
		var (
			t            topic.ScoredTopic
			category     string
			source       string
			region       string
			metadataJSON []byte
		)

		if err := rows.Scan(&t.Term, &t.Score, &category, &source, &region, &metadataJSON, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning topic: %w", err)
		}

		t.Category = topic.Category(category)
		t.Metadata = map[string]any{}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &t.Metadata); err != nil {
				return nil, fmt.Errorf("error unmarshaling metadata: %w", err)
			}
		}
		if _, ok := t.Metadata["source"]; !ok && source != "" {
			t.Metadata["source"] = source
		}
		if _, ok := t.Metadata["region"]; !ok && region != "" {
			t.Metadata["region"] = region
		}

		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}

	return topics, nil
}

func buildInsert(topics []topic.ScoredTopic, now time.Time, newID func() string) (string, []any, error) {
	builder := psql.Insert(topicsTable).Columns(topicColumns...)

	for _, t := range topics {
		metadataJSON, err := json.Marshal(t.Metadata)
		if err != nil {
			return "", nil, fmt.Errorf("error marshaling metadata: %w", err)
		}

		discoveredAt := t.Timestamp
		if discoveredAt.IsZero() {
			discoveredAt = now
		}

		builder = builder.Values(
			newID(),
			t.Term,
			t.Score,
			string(t.Category),
			metadataString(t.Metadata, "source"),
			metadataString(t.Metadata, "region"),
			metadataJSON,
			discoveredAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("error building insert: %w", err)
	}
	return query, args, nil
}

func buildFindQuery(filter topic.TopicFilter) (string, []any, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}
	limit = min(limit, maxFindLimit)

	builder := psql.
		Select("term", "score", "category", "source", "region", "metadata", "discovered_at").
		From(topicsTable).
		Where(sq.GtOrEq{"score": filter.MinScore})

	if filter.Source != "" {
		builder = builder.Where(sq.Eq{"source": filter.Source})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": string(filter.Category)})
	}

	query, args, err := builder.
		OrderBy("discovered_at DESC", "score DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("error building query: %w", err)
	}
	return query, args, nil
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	s, _ := metadata[key].(string)
	return s
}
