// Package analytics records query events: an in-process aggregator keeps
// running statistics and, when Kafka is configured, events are batched onto
// the query-events topic for other consumers.
package analytics

import "time"

// QueryEvent describes one executed query.
type QueryEvent struct {
	Kind      string    `json:"kind"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	Truncated bool      `json:"truncated"`
	NoResult  bool      `json:"no_result"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyUs int64     `json:"latency_us"`
	Source    string    `json:"source"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
