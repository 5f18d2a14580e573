package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *memStore) FlushByPattern(_ context.Context, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.data))
	m.data = make(map[string]string)
	return n, nil
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(newMemStore(), config.Default().Redis, nil)
	ctx := context.Background()
	calls := 0
	compute := func() (*query.Completion, error) {
		calls++
		return &query.Completion{Prefix: "ga", Terms: []string{"garden"}}, nil
	}

	got, hit, err := GetOrCompute(ctx, c, query.KindAutocomplete, "ga", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"garden"}, got.Terms)

	got, hit, err = GetOrCompute(ctx, c, query.KindAutocomplete, "ga", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"garden"}, got.Terms)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(newMemStore(), config.Default().Redis, nil)
	calls := 0
	compute := func() (*query.WordMatch, error) {
		calls++
		return nil, apperrors.ErrNotFound
	}
	for i := 0; i < 2; i++ {
		_, hit, err := GetOrCompute(context.Background(), c, query.KindExact, "zebra", compute)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrComputeFallsBackWhenStoreFails(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	c := New(store, config.Default().Redis, nil)
	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		got, hit, err := GetOrCompute(context.Background(), c, query.KindSpell, "wrd", func() ([]string, error) {
			calls.Add(1)
			return []string{"word"}, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, []string{"word"}, got)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestKeysSeparateKindsAndCollapseWhitespace(t *testing.T) {
	assert.Equal(t, buildKey(query.KindAdvanced, "cat  garden"), buildKey(query.KindAdvanced, " cat garden "))
	assert.NotEqual(t, buildKey(query.KindAdvanced, "cat"), buildKey(query.KindExact, "cat"))
	assert.NotEqual(t, buildKey(query.KindExact, "Cat"), buildKey(query.KindExact, "cat"))
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, config.Default().Redis, nil)
	_, _, err := GetOrCompute(context.Background(), c, query.KindExact, "cat", func() (string, error) { return "x", nil })
	require.NoError(t, err)
	require.Len(t, store.data, 1)

	require.NoError(t, c.Invalidate(context.Background()))
	assert.Empty(t, store.data)
}

func TestMissCountedOncePerLookup(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := New(newMemStore(), config.Default().Redis, m)
	ctx := context.Background()
	compute := func() (string, error) { return "cat", nil }

	_, hit, err := GetOrCompute(ctx, c, query.KindExact, "cat", compute)
	require.NoError(t, err)
	assert.False(t, hit)

	hits, misses := c.Stats()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheHitsTotal))

	_, hit, err = GetOrCompute(ctx, c, query.KindExact, "cat", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
}
