// internal/adapter/storage/signal_cache.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"topicpulse/internal/domain/topic"
)

const signalKeyPrefix = "topicpulse:signals:"

// ErrCacheMiss is returned by a KV when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// KV is the byte cache used in front of the signal store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisKV adapts a redis client to KV
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps an existing redis client
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the cached value; a missing key is ErrCacheMiss
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

// Set stores value under key for ttl
func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

type cachedSignals struct {
	Found        bool    `json:"found"`
	SearchVolume float64 `json:"search_volume"`
	Competition  float64 `json:"competition"`
	HITLScore    float64 `json:"hitl_score"`
}

// CachedSignalStore is a read-through cache over a SignalStore.
// Cache faults are logged and bypassed.
type CachedSignalStore struct {
	store  topic.SignalStore
	kv     KV
	ttl    time.Duration
	logger *slog.Logger
}

var _ topic.SignalStore = (*CachedSignalStore)(nil)

// NewCachedSignalStore creates a cached signal store
func NewCachedSignalStore(store topic.SignalStore, kv KV, ttl time.Duration, logger *slog.Logger) *CachedSignalStore {
	return &CachedSignalStore{
		store:  store,
		kv:     kv,
		ttl:    ttl,
		logger: logger.With("component", "signal_cache"),
	}
}

// Lookup serves from cache when possible; misses and absent rows are both cached
func (c *CachedSignalStore) Lookup(ctx context.Context, term string) (topic.Signals, bool, error) {
	key := signalKeyPrefix + term

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var cached cachedSignals
		if err := json.Unmarshal(raw, &cached); err == nil {
			return topic.Signals{
				SearchVolume: cached.SearchVolume,
				Competition:  cached.Competition,
				HITLScore:    cached.HITLScore,
			}, cached.Found, nil
		}
		c.logger.Warn("discarding malformed cache entry", "term", term)
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("signal cache read failed", "term", term, "error", err)
	}

	signals, found, err := c.store.Lookup(ctx, term)
	if err != nil {
		return signals, found, err
	}

	payload, err := json.Marshal(cachedSignals{
		Found:        found,
		SearchVolume: signals.SearchVolume,
		Competition:  signals.Competition,
		HITLScore:    signals.HITLScore,
	})
	if err == nil {
		err = c.kv.Set(ctx, key, payload, c.ttl)
	}
	if err != nil {
		c.logger.Warn("signal cache write failed", "term", term, "error", err)
	}

	return signals, found, nil
}
