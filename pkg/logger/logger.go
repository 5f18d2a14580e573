// Package logger configures slog and carries the request id through
// contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
)

type requestIDKey struct{}

// New builds a logger writing to w. Unknown levels fall back to info and any
// format other than "json" produces text.
func New(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Install makes New(w, cfg) the process default.
func Install(w io.Writer, cfg config.LoggingConfig) {
	slog.SetDefault(New(w, cfg))
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the default logger, tagged with the request id when
// ctx carries one.
func FromContext(ctx context.Context) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		return slog.Default().With("request_id", id)
	}
	return slog.Default()
}
