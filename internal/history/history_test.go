package history

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
)

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	h := New(5)
	for _, q := range []string{"cat", "dog", "bird"} {
		require.NoError(t, h.Add(ctx, q))
	}
	got, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bird", "dog", "cat"}, got)

	last, ok, err := h.Last(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bird", last)
}

func TestHistorySkipsConsecutiveDuplicate(t *testing.T) {
	ctx := context.Background()
	h := New(5)
	for _, q := range []string{"cat", "cat", "dog", "cat"} {
		require.NoError(t, h.Add(ctx, q))
	}
	got, _ := h.List(ctx)
	assert.Equal(t, []string{"cat", "dog", "cat"}, got)
}

func TestHistoryDropsOldest(t *testing.T) {
	ctx := context.Background()
	h := New(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Add(ctx, fmt.Sprintf("q%d", i)))
	}
	got, _ := h.List(ctx)
	assert.Equal(t, []string{"q5", "q4", "q3"}, got)
}

func TestHistoryEmpty(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultDepth, h.depth)
	got, err := h.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	_, ok, _ := h.Last(context.Background())
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	rec, err := Open(config.HistoryConfig{Backend: "memory", Depth: 4}, nil)
	require.NoError(t, err)
	assert.IsType(t, &History{}, rec)

	_, err = Open(config.HistoryConfig{Backend: "redis"}, nil)
	assert.Error(t, err)

	_, err = Open(config.HistoryConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)
}

func redisOrSkip(t *testing.T) *pkgredis.Client {
	t.Helper()
	cfg := config.Default().Redis
	if addr := os.Getenv("TS_REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	client, err := pkgredis.NewClient(cfg)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisHistory(t *testing.T) {
	client := redisOrSkip(t)
	ctx := context.Background()
	key := fmt.Sprintf("trie-search:test:history:%s", t.Name())
	require.NoError(t, client.Del(ctx, key))
	t.Cleanup(func() { client.Del(context.Background(), key) })

	h := NewRedis(client, key, 3)
	for _, q := range []string{"a", "a", "b", "c", "d"} {
		require.NoError(t, h.Add(ctx, q))
	}
	got, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "b"}, got)

	last, ok, err := h.Last(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "d", last)
}
