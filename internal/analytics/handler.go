package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler exposes the aggregator over HTTP.
type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// Register mounts the analytics routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/kinds/{kind}", h.KindCount)
}

// Stats writes the full snapshot. An optional top parameter shortens the
// ranked query lists.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.aggregator.Stats()
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.reply(w, http.StatusBadRequest, map[string]string{"error": "top must be a non-negative integer"})
			return
		}
		stats.TopQueries = head(stats.TopQueries, n)
		stats.NoResultQueries = head(stats.NoResultQueries, n)
	}
	h.reply(w, http.StatusOK, stats)
}

type kindCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// KindCount writes the number of events recorded for one query kind.
func (h *Handler) KindCount(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	h.reply(w, http.StatusOK, kindCount{Kind: kind, Count: h.aggregator.Stats().ByKind[kind]})
}

func (h *Handler) reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write analytics response", "status", status, "error", err)
	}
}

func head(list []QueryCount, n int) []QueryCount {
	if len(list) > n {
		return list[:n]
	}
	return list
}
