package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, config.LoggingConfig{Level: "warn", Format: "json"})
	log.Info("hidden")
	log.Warn("shown", "term", "cat")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "cat", line["term"])
}

func TestNewFallsBackToInfoText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, config.LoggingConfig{Level: "chatty"})
	log.Debug("hidden")
	log.Info("indexed")
	assert.Contains(t, buf.String(), "msg=indexed")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestFromContextTagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	Install(&buf, config.LoggingConfig{Level: "info"})

	ctx := WithRequestID(context.Background(), "abc123")
	assert.Equal(t, "abc123", RequestID(ctx))
	FromContext(ctx).Info("query")
	assert.Contains(t, buf.String(), "request_id=abc123")

	assert.Empty(t, RequestID(context.Background()))
}
