// internal/adapter/storage/search_source.go

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"

	"topicpulse/internal/domain/topic"
)

// SearchQuerySource reads recent user search queries as one text blob
type SearchQuerySource struct {
	db     *pgxpool.Pool
	limit  uint64
	window time.Duration
	now    func() time.Time
}

var _ topic.TextSource = (*SearchQuerySource)(nil)

// NewSearchQuerySource creates a text source over search_queries(query, searched_at)
func NewSearchQuerySource(db *pgxpool.Pool, limit uint64, window time.Duration) *SearchQuerySource {
	return &SearchQuerySource{
		db:     db,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Text returns the queries of the window joined by newlines
func (s *SearchQuerySource) Text(ctx context.Context) (string, error) {
	query, args, err := buildRecentQueries(s.limit, s.now().Add(-s.window).UTC())
	if err != nil {
		return "", err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return "", fmt.Errorf("error scanning search query: %w", err)
		}
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}

	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating search queries: %w", err)
	}

	return strings.Join(queries, "\n"), nil
}

func buildRecentQueries(limit uint64, since time.Time) (string, []any, error) {
	builder := psql.
		Select("query").
		From("search_queries").
		Where(sq.GtOrEq{"searched_at": since}).
		OrderBy("searched_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("error building query: %w", err)
	}
	return query, args, nil
}
