package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
)

const latencyWindow = 10000

// Stats is a snapshot of aggregated query activity.
type Stats struct {
	TotalQueries     int64            `json:"total_queries"`
	ByKind           map[string]int64 `json:"by_kind"`
	CacheHits        int64            `json:"cache_hits"`
	CacheMisses      int64            `json:"cache_misses"`
	NoResultCount    int64            `json:"no_result_count"`
	AvgLatencyUs     float64          `json:"avg_latency_us"`
	P50LatencyUs     int64            `json:"p50_latency_us"`
	P95LatencyUs     int64            `json:"p95_latency_us"`
	P99LatencyUs     int64            `json:"p99_latency_us"`
	TopQueries       []QueryCount     `json:"top_queries"`
	NoResultQueries  []QueryCount     `json:"no_result_queries"`
	QueriesPerMinute float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator accumulates QueryEvents. It is safe for concurrent use.
type Aggregator struct {
	mu          sync.Mutex
	total       int64
	byKind      map[string]int64
	cacheHits   int64
	cacheMisses int64
	noResults   int64
	latencies   []int64
	next        int
	queries     map[string]int64
	missed      map[string]int64
	started     time.Time
	logger      *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byKind:    make(map[string]int64),
		latencies: make([]int64, 0, 256),
		queries:   make(map[string]int64),
		missed:    make(map[string]int64),
		started:   time.Now(),
		logger:    slog.Default().With("component", "analytics-aggregator"),
	}
}

// Record adds one event.
func (a *Aggregator) Record(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	a.byKind[event.Kind]++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.queries[event.Query]++
	if event.NoResult {
		a.noResults++
		a.missed[event.Query]++
	}
	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.next] = event.LatencyUs
		a.next = (a.next + 1) % latencyWindow
	}
}

// Stats returns a snapshot. Latency figures cover the most recent events
// only.
func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := Stats{
		TotalQueries:  a.total,
		ByKind:        make(map[string]int64, len(a.byKind)),
		CacheHits:     a.cacheHits,
		CacheMisses:   a.cacheMisses,
		NoResultCount: a.noResults,
	}
	for k, v := range a.byKind {
		stats.ByKind[k] = v
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queries, 10)
	stats.NoResultQueries = topN(a.missed, 10)
	if elapsed := time.Since(a.started).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(a.total) / elapsed
	}
	return stats
}

// HandleEvent adapts the aggregator to a Kafka consumer. Undecodable
// messages are logged and skipped so they are still committed.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode query event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
