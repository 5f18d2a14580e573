package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadIndexesInArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 8)
	for _, name := range []string{"h.txt", "g.txt", "f.txt", "e.txt", "d.txt", "c.txt", "b.txt", "a.txt"} {
		paths = append(paths, writeFile(t, dir, name, "common words for "+name[:1]))
	}

	idx := index.New()
	cfg := config.Default().Ingestion
	cfg.Workers = 3
	results, err := NewLoader(idx, cfg, nil).Load(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Stats.DocID)
		assert.Equal(t, paths[i], idx.Path(i))
	}
	node := idx.Lookup("common")
	require.True(t, node.Terminal())
	assert.Equal(t, len(paths), node.DocCount())
}

func TestLoadContinuesPastUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "Running dogs")
	missing := filepath.Join(dir, "missing.txt")
	other := writeFile(t, dir, "other.txt", "sleeping cats")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	idx := index.New()
	results, err := NewLoader(idx, config.Default().Ingestion, m).Load(context.Background(), []string{good, missing, dir, other})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, apperrors.ErrIngestionIO)
	assert.ErrorIs(t, results[2].Err, apperrors.ErrIngestionIO, "directories are rejected")
	assert.NoError(t, results[3].Err)
	assert.Equal(t, 1, results[3].Stats.DocID, "failed paths are not registered")
	assert.Equal(t, 2, idx.Registry().Len())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestionFailuresTotal))
	assert.Equal(t, float64(idx.Stats().Terms), testutil.ToFloat64(m.IndexTerms))

	s := Summarize(results)
	assert.Equal(t, Summary{Requested: 4, Indexed: 2, Failed: 2, Tokens: 4}, s)
}

func TestLoadDuplicatePathIndexedOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.txt", "echo echo")

	idx := index.New()
	results, err := NewLoader(idx, config.Default().Ingestion, nil).Load(context.Background(), []string{path, path})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Stats.DocID, results[1].Stats.DocID)
	assert.Equal(t, 1, idx.Registry().Len())

	p, ok := idx.Lookup("echo").Posting(0)
	require.True(t, ok)
	assert.Equal(t, 2, p.Frequency)
}

func TestLoadRejectsOversizedDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.txt", "abcdefghij abcdefghij")

	cfg := config.Default().Ingestion
	cfg.MaxDocumentBytes = 8
	results, err := NewLoader(index.New(), cfg, nil).Load(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, apperrors.ErrIngestionIO)

	var verr *validator.ValidationError
	require.ErrorAs(t, results[0].Err, &verr)
	assert.True(t, verr.Has("size"))
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(index.New(), config.Default().Ingestion, nil).Load(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}
