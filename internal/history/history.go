// Package history keeps a fixed-depth log of the literal query strings a
// caller submitted. A query equal to the most recent entry is not recorded
// again, and once the log is full the oldest entry is dropped.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
)

// DefaultDepth is the number of queries kept when no depth is configured.
const DefaultDepth = 20

// Recorder stores query strings. List returns entries newest first.
type Recorder interface {
	Add(ctx context.Context, query string) error
	List(ctx context.Context) ([]string, error)
	Last(ctx context.Context) (string, bool, error)
}

// History is the in-memory Recorder. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	depth   int
	entries []string
}

func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{
		depth:   depth,
		entries: make([]string, 0, depth),
	}
}

func (h *History) Add(_ context.Context, query string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == query {
		return nil
	}
	if len(h.entries) >= h.depth {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.depth-1]
	}
	h.entries = append(h.entries, query)
	return nil
}

func (h *History) List(_ context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	for i, q := range h.entries {
		out[len(h.entries)-1-i] = q
	}
	return out, nil
}

func (h *History) Last(_ context.Context) (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return "", false, nil
	}
	return h.entries[len(h.entries)-1], true, nil
}

// RedisHistory keeps the log in a Redis list, newest entry at the head.
type RedisHistory struct {
	client *pkgredis.Client
	key    string
	depth  int
}

func NewRedis(client *pkgredis.Client, key string, depth int) *RedisHistory {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &RedisHistory{client: client, key: key, depth: depth}
}

// Add is check-then-push; two writers racing on the same query may both
// record it.
func (r *RedisHistory) Add(ctx context.Context, query string) error {
	last, ok, err := r.client.Head(ctx, r.key)
	if err != nil {
		return fmt.Errorf("reading history head: %w", err)
	}
	if ok && last == query {
		return nil
	}
	return r.client.PushCapped(ctx, r.key, query, r.depth)
}

func (r *RedisHistory) List(ctx context.Context) ([]string, error) {
	entries, err := r.client.Range(ctx, r.key, 0, int64(r.depth-1))
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

func (r *RedisHistory) Last(ctx context.Context) (string, bool, error) {
	return r.client.Head(ctx, r.key)
}

// Open returns the Recorder selected by cfg.Backend. client is only used by
// the redis backend and may be nil otherwise.
func Open(cfg config.HistoryConfig, client *pkgredis.Client) (Recorder, error) {
	switch cfg.Backend {
	case "", "memory":
		return New(cfg.Depth), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("history backend redis requires a redis client")
		}
		return NewRedis(client, cfg.RedisKey, cfg.Depth), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
