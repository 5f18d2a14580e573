package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

// Loader builds an index from files on disk.
type Loader struct {
	idx     *index.Index
	cfg     config.IngestionConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewLoader returns a Loader writing into idx. m may be nil.
func NewLoader(idx *index.Index, cfg config.IngestionConfig, m *metrics.Metrics) *Loader {
	return &Loader{
		idx:     idx,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "ingestion"),
	}
}

// Load reads every path with at most cfg.Workers concurrent reads, then
// indexes the documents sequentially in argument order. A path that cannot be
// read produces a Result wrapping ErrIngestionIO and is not registered. The
// returned error is non-nil only when ctx is cancelled.
func (l *Loader) Load(ctx context.Context, paths []string) ([]Result, error) {
	docs := make([]*Document, len(paths))
	readErrs := make([]error, len(paths))

	workers := l.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := l.read(path)
			if err != nil {
				readErrs[i] = err
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}

	start := time.Now()
	results := make([]Result, 0, len(paths))
	for i, path := range paths {
		if readErrs[i] != nil {
			l.logger.Warn("skipping document", "path", path, "error", readErrs[i])
			if l.metrics != nil {
				l.metrics.IngestionFailuresTotal.Inc()
			}
			results = append(results, Result{Path: path, Err: readErrs[i]})
			continue
		}
		stats := l.idx.AddDocument(path, docs[i].Tokens)
		if l.metrics != nil {
			l.metrics.DocsIndexedTotal.Inc()
		}
		results = append(results, Result{Path: path, Stats: stats})
	}

	st := l.idx.Stats()
	if l.metrics != nil {
		l.metrics.IndexTerms.Set(float64(st.Terms))
		l.metrics.IndexNodes.Set(float64(st.Nodes))
	}
	summary := Summarize(results)
	l.logger.Info("batch indexed",
		"requested", summary.Requested,
		"indexed", summary.Indexed,
		"failed", summary.Failed,
		"terms", st.Terms,
		"nodes", st.Nodes,
		"duration", time.Since(start),
	)
	return results, nil
}

func (l *Loader) read(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrIngestionIO, path, err)
	}
	if err := validator.ValidateSource(path, info, l.cfg.MaxDocumentBytes); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrIngestionIO, path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrIngestionIO, path, err)
	}
	return &Document{
		Path:      path,
		Tokens:    strings.Fields(string(data)),
		SizeBytes: len(data),
	}, nil
}
