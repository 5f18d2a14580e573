package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/history"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/report"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/redis"
)

// services holds the index and every collaborator built from config. The
// external ones (redis, kafka, postgres) are nil when disabled or unreachable.
type services struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	index      *index.Index
	redis      *pkgredis.Client
	history    history.Recorder
	cache      *cache.QueryCache
	producer   *kafka.Producer
	aggregator *analytics.Aggregator
	collector  *analytics.Collector
	postgres   *postgres.Client
	sink       report.Sink
	exec       *executor.Executor
	closers    []func() error
	logger     *slog.Logger
}

func openServices(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, source string) (*services, error) {
	s := &services{
		cfg:        cfg,
		metrics:    metrics.New(reg),
		index:      index.New(),
		aggregator: analytics.NewAggregator(),
		logger:     slog.Default().With("component", "services"),
	}

	if cfg.Search.CacheEnabled || cfg.History.Backend == "redis" {
		client, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			s.logger.Warn("redis unavailable, caching and redis history disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			s.redis = client
			s.closers = append(s.closers, client.Close)
			if cfg.Search.CacheEnabled {
				s.cache = cache.New(client, cfg.Redis, s.metrics)
				s.logger.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
			}
		}
	}

	historyCfg := cfg.History
	if historyCfg.Backend == "redis" && s.redis == nil {
		historyCfg.Backend = "memory"
	}
	recorder, err := history.Open(historyCfg, s.redis)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening history: %w", err)
	}
	s.history = recorder

	var publisher analytics.Publisher
	if cfg.Kafka.Enabled {
		s.producer = kafka.NewProducer(cfg.Kafka, cfg.Kafka.QueryEvents)
		publisher = s.producer
		s.logger.Info("query events enabled", "topic", cfg.Kafka.QueryEvents, "brokers", cfg.Kafka.Brokers)
	}
	s.collector = analytics.NewCollector(publisher, s.aggregator, s.metrics, cfg.Analytics)
	s.collector.Start(ctx)
	// The collector flushes through the producer, so it closes first.
	s.closers = append(s.closers, func() error {
		s.collector.Close()
		if s.producer != nil {
			return s.producer.Close()
		}
		return nil
	})

	if cfg.Postgres.Enabled {
		client, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			s.logger.Warn("postgres unavailable, export archiving disabled", "host", cfg.Postgres.Host, "error", err)
		} else {
			sink := report.NewPostgresSink(client)
			if err := sink.EnsureSchema(ctx); err != nil {
				client.Close()
				s.Close()
				return nil, err
			}
			s.postgres = client
			s.sink = sink
			s.closers = append(s.closers, client.Close)
		}
	}

	s.exec = executor.New(query.New(s.index, cfg.Index), executor.Options{
		Cache:     s.cache,
		Collector: s.collector,
		History:   s.history,
		Metrics:   s.metrics,
		Source:    source,
	})
	return s, nil
}

// load indexes paths and returns the per-file results in argument order.
func (s *services) load(ctx context.Context, paths []string) ([]ingestion.Result, error) {
	loader := ingestion.NewLoader(s.index, s.cfg.Ingestion, s.metrics)
	return loader.Load(ctx, paths)
}

// Close releases collaborators in reverse order of opening.
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", "error", err)
		}
	}
	s.closers = nil
}
