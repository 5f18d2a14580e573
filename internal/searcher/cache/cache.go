// Package cache memoises query results in Redis. Concurrent identical
// queries are collapsed with singleflight, and Redis failures trip a breaker
// so queries fall back to the index instead of waiting on the cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/resilience"
)

const keyPrefix = "trie-search:q:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over store. m may be nil.
func New(store Store, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store: store,
		ttl:   cfg.CacheTTL,
		breaker: resilience.NewBreaker("query-cache", resilience.BreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     10 * time.Second,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached result for (kind, q) or runs compute,
// caching its result when it succeeds. Failed computations are not cached.
// hit reports whether the value came from Redis.
func GetOrCompute[T any](ctx context.Context, c *QueryCache, kind query.Kind, q string, compute func() (T, error)) (result T, hit bool, err error) {
	key := buildKey(kind, q)
	if c.get(ctx, key, &result) {
		c.hit()
		return result, true, nil
	}
	c.miss()
	val, err, _ := c.group.Do(key, func() (any, error) {
		var cached T
		if c.get(ctx, key, &cached) {
			return cached, nil
		}
		computed, err := compute()
		if err != nil {
			return computed, err
		}
		c.set(ctx, key, computed)
		return computed, nil
	})
	result, _ = val.(T)
	return result, false, err
}

func (c *QueryCache) get(ctx context.Context, key string, dst any) bool {
	var data string
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			return nil
		}
		return err
	})
	if err != nil || data == "" {
		if err != nil {
			c.logger.Debug("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Invalidate deletes every cached query result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey collapses runs of whitespace but keeps case, since results echo
// the query as typed.
func buildKey(kind query.Kind, q string) string {
	normalized := strings.Join(strings.Fields(q), " ")
	hash := sha256.Sum256([]byte(string(kind) + "\x00" + normalized))
	return fmt.Sprintf("%s%s:%x", keyPrefix, kind, hash[:16])
}
