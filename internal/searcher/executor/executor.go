// Package executor runs query-engine operations on behalf of a caller (the
// HTTP handler or the CLI) and applies the cross-cutting concerns around
// them: search history, the Redis result cache, Prometheus metrics and
// analytics events.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/history"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/fuzzy"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

// Options wires optional collaborators. Any field may be left zero.
type Options struct {
	Cache     *cache.QueryCache
	Collector *analytics.Collector
	History   history.Recorder
	Metrics   *metrics.Metrics
	Source    string
}

type Executor struct {
	engine *query.Engine
	opts   Options
	logger *slog.Logger
}

func New(engine *query.Engine, opts Options) *Executor {
	if opts.Source == "" {
		opts.Source = "cli"
	}
	return &Executor{
		engine: engine,
		opts:   opts,
		logger: slog.Default().With("component", "query-executor", "source", opts.Source),
	}
}

func (e *Executor) Exact(ctx context.Context, word string) (*query.WordMatch, error) {
	return run(ctx, e, query.KindExact, word, word,
		func(m *query.WordMatch) (int, bool) { return len(m.Documents), false },
		func() (*query.WordMatch, error) { return e.engine.ExactSearch(word) },
	)
}

func (e *Executor) Details(ctx context.Context, word string) ([]string, error) {
	return run(ctx, e, query.KindDetails, word, word,
		func(lines []string) (int, bool) { return len(lines), false },
		func() ([]string, error) { return e.engine.WordDetails(word) },
	)
}

func (e *Executor) Autocomplete(ctx context.Context, prefix string) (*query.Completion, error) {
	return run(ctx, e, query.KindAutocomplete, prefix, prefix,
		func(c *query.Completion) (int, bool) { return len(c.Terms), c.Truncated },
		func() (*query.Completion, error) { return e.engine.Autocomplete(prefix) },
	)
}

func (e *Executor) Partial(ctx context.Context, fragment string) (*query.Completion, error) {
	return run(ctx, e, query.KindPartial, fragment, fragment,
		func(c *query.Completion) (int, bool) { return len(c.Terms), c.Truncated },
		func() (*query.Completion, error) { return e.engine.PartialSearch(fragment) },
	)
}

func (e *Executor) Advanced(ctx context.Context, phrase string) (*query.DocumentSet, error) {
	return run(ctx, e, query.KindAdvanced, phrase, phrase,
		func(s *query.DocumentSet) (int, bool) { return len(s.Paths), s.Truncated },
		func() (*query.DocumentSet, error) { return e.engine.AdvancedSearch(phrase) },
	)
}

func (e *Executor) Spell(ctx context.Context, word string) ([]fuzzy.Suggestion, error) {
	return run(ctx, e, query.KindSpell, word, word,
		func(s []fuzzy.Suggestion) (int, bool) { return len(s), false },
		func() ([]fuzzy.Suggestion, error) { return e.engine.SpellCheck(word) },
	)
}

// Proximity records "word1 word2" in the history; the distance is part of
// the cache key only.
func (e *Executor) Proximity(ctx context.Context, word1, word2 string, maxDistance int) ([]query.ProximityMatch, error) {
	key := fmt.Sprintf("%s %s %d", word1, word2, maxDistance)
	return run(ctx, e, query.KindProximity, key, word1+" "+word2,
		func(m []query.ProximityMatch) (int, bool) { return len(m), false },
		func() ([]query.ProximityMatch, error) { return e.engine.ProximitySearch(word1, word2, maxDistance) },
	)
}

// History returns recorded queries newest first.
func (e *Executor) History(ctx context.Context) ([]string, error) {
	if e.opts.History == nil {
		return []string{}, nil
	}
	return e.opts.History.List(ctx)
}

// LastQuery returns the most recent recorded query.
func (e *Executor) LastQuery(ctx context.Context) (string, bool, error) {
	if e.opts.History == nil {
		return "", false, nil
	}
	return e.opts.History.Last(ctx)
}

func run[T any](
	ctx context.Context,
	e *Executor,
	kind query.Kind,
	q string,
	historyEntry string,
	count func(T) (int, bool),
	compute func() (T, error),
) (T, error) {
	log := logger.FromContext(ctx).With("component", "query-executor", "kind", string(kind))
	if e.opts.History != nil && strings.TrimSpace(historyEntry) != "" {
		if err := e.opts.History.Add(ctx, historyEntry); err != nil {
			log.Warn("recording history failed", "error", err)
		}
	}

	start := time.Now()
	var (
		result T
		hit    bool
		err    error
	)
	if e.opts.Cache != nil {
		result, hit, err = cache.GetOrCompute(ctx, e.opts.Cache, kind, q, compute)
	} else {
		result, err = compute()
	}
	elapsed := time.Since(start)

	n, truncated := 0, false
	if err == nil {
		n, truncated = count(result)
	}
	outcome := "hit"
	switch {
	case apperrors.IsNoResult(err):
		outcome = "no_result"
	case err != nil:
		outcome = "error"
	}

	if m := e.opts.Metrics; m != nil {
		cacheStatus := "miss"
		if hit {
			cacheStatus = "hit"
		}
		m.QueriesTotal.WithLabelValues(string(kind), outcome).Inc()
		m.QueryLatency.WithLabelValues(string(kind), cacheStatus).Observe(elapsed.Seconds())
		m.QueryResultsCount.WithLabelValues(string(kind)).Observe(float64(n))
	}
	if e.opts.Collector != nil {
		e.opts.Collector.Track(analytics.QueryEvent{
			Kind:      string(kind),
			Query:     strings.TrimSpace(q),
			Results:   n,
			Truncated: truncated,
			NoResult:  outcome == "no_result",
			CacheHit:  hit,
			LatencyUs: elapsed.Microseconds(),
			Source:    e.opts.Source,
			RequestID: logger.RequestID(ctx),
			Timestamp: time.Now().UTC(),
		})
	}

	log.Debug("query executed",
		"query", q,
		"outcome", outcome,
		"results", n,
		"truncated", truncated,
		"cache_hit", hit,
		"latency", elapsed,
	)
	return result, err
}
