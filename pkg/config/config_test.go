package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Index.MaxSuggestions)
	assert.Equal(t, 99, cfg.Index.MaxTokenLength)
	assert.Equal(t, 20, cfg.History.Depth)
	assert.Equal(t, "memory", cfg.History.Backend)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trie-search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
index:
  maxSuggestions: 5
server:
  requestTimeout: 250ms
  corsOrigins: ["http://localhost:3000"]
logging:
  format: json
`), 0o644))

	t.Setenv("TS_INDEX_MAX_RESULTS", "7")
	t.Setenv("TS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TS_POSTGRES_HOST", "db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Index.MaxSuggestions)
	assert.Equal(t, 7, cfg.Index.MaxResults)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, "db", cfg.Postgres.Host)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("TS_HISTORY_BACKEND", "etcd")
	_, err := Load("")
	assert.ErrorContains(t, err, `unknown history backend "etcd"`)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
