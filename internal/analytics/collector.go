package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/resilience"
)

// Publisher sends a batch of events downstream.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers QueryEvents on a channel. A background loop records each
// event in the Aggregator and, if a Publisher is set, publishes them in
// batches of BatchSize or every FlushInterval. Track never blocks: events are
// dropped when the buffer is full.
type Collector struct {
	publisher Publisher
	agg       *Aggregator
	metrics   *metrics.Metrics
	breaker   *resilience.Breaker
	cfg       config.AnalyticsConfig
	eventCh   chan QueryEvent
	mu        sync.RWMutex
	closed    bool
	started   bool
	done      chan struct{}
	logger    *slog.Logger
}

// NewCollector returns a Collector. publisher, agg and m may each be nil.
func NewCollector(publisher Publisher, agg *Aggregator, m *metrics.Metrics, cfg config.AnalyticsConfig) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	return &Collector{
		publisher: publisher,
		agg:       agg,
		metrics:   m,
		breaker:   resilience.NewBreaker("query-events", resilience.BreakerConfig{}),
		cfg:       cfg,
		eventCh:   make(chan QueryEvent, cfg.BufferSize),
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "analytics-collector"),
	}
}

// Start launches the background loop. It returns immediately.
func (c *Collector) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", c.cfg.BufferSize,
		"batch_size", c.cfg.BatchSize,
		"publishing", c.publisher != nil,
	)
}

// Track enqueues event without blocking.
func (c *Collector) Track(event QueryEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		if c.metrics != nil {
			c.metrics.EventsDroppedTotal.Inc()
		}
		c.logger.Warn("analytics event dropped (buffer full)", "kind", event.Kind)
	}
}

// Close stops accepting events, flushes what is buffered and waits for the
// loop to exit.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	started := c.started
	close(c.eventCh)
	c.mu.Unlock()
	if started {
		<-c.done
	}
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.cfg.BatchSize)
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.flushDetached(batch)
				return
			}
			batch = c.accept(ctx, batch, event)
		case <-ticker.C:
			batch = c.flush(ctx, batch)
		case <-ctx.Done():
			for {
				select {
				case event, ok := <-c.eventCh:
					if !ok {
						c.flushDetached(batch)
						return
					}
					c.record(event)
					batch = c.appendEvent(batch, event)
				default:
					c.flushDetached(batch)
					return
				}
			}
		}
	}
}

func (c *Collector) accept(ctx context.Context, batch []kafka.Event, event QueryEvent) []kafka.Event {
	c.record(event)
	batch = c.appendEvent(batch, event)
	if len(batch) >= c.cfg.BatchSize {
		batch = c.flush(ctx, batch)
	}
	return batch
}

func (c *Collector) record(event QueryEvent) {
	if c.agg != nil {
		c.agg.Record(event)
	}
}

func (c *Collector) appendEvent(batch []kafka.Event, event QueryEvent) []kafka.Event {
	if c.publisher == nil {
		return batch
	}
	return append(batch, kafka.Event{Key: event.Kind, Value: event})
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 {
		return batch
	}
	err := c.breaker.Execute(func() error {
		return c.publisher.PublishBatch(ctx, batch)
	})
	if err != nil {
		if c.metrics != nil {
			c.metrics.EventsDroppedTotal.Add(float64(len(batch)))
		}
		c.logger.Error("query event batch dropped", "events", len(batch), "error", err)
	}
	return batch[:0]
}

func (c *Collector) flushDetached(batch []kafka.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.flush(ctx, batch)
}
