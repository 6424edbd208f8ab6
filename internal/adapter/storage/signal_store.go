// internal/adapter/storage/signal_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"topicpulse/internal/domain/topic"
)

// SignalStore reads aggregated search and feedback signals per term.
// Tables: search_data(term, search_volume, competition),
// feedback(term, score), historical_topics(term, trend_score, success_rate).
type SignalStore struct {
	db *pgxpool.Pool
}

var (
	_ topic.SignalStore    = (*SignalStore)(nil)
	_ topic.TrainingSource = (*SignalStore)(nil)
)

// NewSignalStore creates a new signal store
func NewSignalStore(db *pgxpool.Pool) *SignalStore {
	return &SignalStore{db: db}
}

// Lookup returns the signals of an exact term match
func (s *SignalStore) Lookup(ctx context.Context, term string) (topic.Signals, bool, error) {
	query, args, err := buildSignalQuery(term)
	if err != nil {
		return topic.Signals{}, false, err
	}

	var signals topic.Signals
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&signals.SearchVolume,
		&signals.Competition,
		&signals.HITLScore,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return topic.Signals{}, false, nil
	}
	if err != nil {
		return topic.Signals{}, false, fmt.Errorf("error querying signals: %w", err)
	}

	return signals, true, nil
}

// TrainingRows pulls the joined feature/outcome rows used for retraining
func (s *SignalStore) TrainingRows(ctx context.Context) ([]topic.TrainingRow, error) {
	query, args, err := buildTrainingQuery()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var result []topic.TrainingRow
	for rows.Next() {
		var r topic.TrainingRow
		if err := rows.Scan(
			&r.Features.SearchVolume,
			&r.Features.Competition,
			&r.Features.TrendScore,
			&r.Features.HITLScore,
			&r.Label,
		); err != nil {
			return nil, fmt.Errorf("error scanning training row: %w", err)
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training rows: %w", err)
	}

	return result, nil
}

func buildSignalQuery(term string) (string, []any, error) {
	query, args, err := psql.
		Select(
			"COALESCE(s.search_volume, 0)::float8",
			"COALESCE(s.competition, 0)::float8",
			"COALESCE(AVG(f.score), 0)::float8",
		).
		From("search_data s").
		LeftJoin("feedback f ON s.term = f.term").
		Where(sq.Eq{"s.term": term}).
		GroupBy("s.search_volume", "s.competition").
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("error building query: %w", err)
	}
	return query, args, nil
}

// Historical rows without feedback are kept with a zero hitl score.
func buildTrainingQuery() (string, []any, error) {
	query, args, err := psql.
		Select(
			"s.search_volume::float8",
			"s.competition::float8",
			"h.trend_score::float8",
			"COALESCE(AVG(f.score), 0)::float8",
			"h.success_rate::float8",
		).
		From("historical_topics h").
		Join("search_data s ON h.term = s.term").
		LeftJoin("feedback f ON h.term = f.term").
		GroupBy("h.term", "s.search_volume", "s.competition", "h.trend_score", "h.success_rate").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("error building query: %w", err)
	}
	return query, args, nil
}
