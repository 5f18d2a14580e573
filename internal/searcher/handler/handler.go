// Package handler exposes the query executor over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/logger"
)

const hint = "Try using autocomplete or spell check to find similar words."

type Handler struct {
	exec   *executor.Executor
	idx    *index.Index
	cache  *cache.QueryCache
	logger *slog.Logger
}

// New returns a Handler. queryCache may be nil.
func New(exec *executor.Executor, idx *index.Index, queryCache *cache.QueryCache) *Handler {
	return &Handler{
		exec:   exec,
		idx:    idx,
		cache:  queryCache,
		logger: slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the query routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/details", h.Details)
	mux.HandleFunc("GET /api/v1/autocomplete", h.Autocomplete)
	mux.HandleFunc("GET /api/v1/partial", h.Partial)
	mux.HandleFunc("GET /api/v1/advanced", h.Advanced)
	mux.HandleFunc("GET /api/v1/spell", h.Spell)
	mux.HandleFunc("GET /api/v1/proximity", h.Proximity)
	mux.HandleFunc("GET /api/v1/history", h.History)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	match, err := h.exec.Exact(r.Context(), q)
	if err != nil {
		h.writeQueryError(w, r, q, err, &query.WordMatch{Query: q, Documents: []query.DocFrequency{}})
		return
	}
	h.writeJSON(w, http.StatusOK, match)
}

type detailsResponse struct {
	Query string   `json:"query"`
	Lines []string `json:"lines"`
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	lines, err := h.exec.Details(r.Context(), q)
	if err != nil {
		h.writeQueryError(w, r, q, err, detailsResponse{Query: q, Lines: []string{}})
		return
	}
	h.writeJSON(w, http.StatusOK, detailsResponse{Query: q, Lines: lines})
}

func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	c, err := h.exec.Autocomplete(r.Context(), prefix)
	h.writeCompletion(w, r, prefix, c, err)
}

func (h *Handler) Partial(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	c, err := h.exec.Partial(r.Context(), prefix)
	h.writeCompletion(w, r, prefix, c, err)
}

func (h *Handler) writeCompletion(w http.ResponseWriter, r *http.Request, prefix string, c *query.Completion, err error) {
	if err != nil {
		h.writeQueryError(w, r, prefix, err, &query.Completion{Prefix: prefix, Terms: []string{}})
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) Advanced(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	set, err := h.exec.Advanced(r.Context(), q)
	if err != nil {
		h.writeQueryError(w, r, q, err, &query.DocumentSet{Query: q, Terms: []string{}, Paths: []string{}})
		return
	}
	h.writeJSON(w, http.StatusOK, set)
}

type spellResponse struct {
	Query       string `json:"query"`
	Suggestions any    `json:"suggestions"`
}

func (h *Handler) Spell(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	suggestions, err := h.exec.Spell(r.Context(), q)
	if err != nil {
		h.writeQueryError(w, r, q, err, spellResponse{Query: q, Suggestions: []string{}})
		return
	}
	h.writeJSON(w, http.StatusOK, spellResponse{Query: q, Suggestions: suggestions})
}

type proximityResponse struct {
	Word1       string                 `json:"word1"`
	Word2       string                 `json:"word2"`
	MaxDistance int                    `json:"max_distance"`
	Matches     []query.ProximityMatch `json:"matches"`
}

func (h *Handler) Proximity(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	w1, w2 := params.Get("w1"), params.Get("w2")
	distance, err := strconv.Atoi(params.Get("distance"))
	if err != nil || distance < 0 {
		h.writeAppError(w, apperrors.New(apperrors.ErrInvalidInput, "distance must be a non-negative integer"))
		return
	}
	matches, err := h.exec.Proximity(r.Context(), w1, w2, distance)
	resp := proximityResponse{Word1: w1, Word2: w2, MaxDistance: distance, Matches: matches}
	if err != nil {
		resp.Matches = []query.ProximityMatch{}
		h.writeQueryError(w, r, w1+" "+w2, err, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.exec.History(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("reading history failed", "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrUnavailable, "history unavailable"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"queries": entries})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.idx.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeAppError(w, apperrors.New(apperrors.ErrUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

type errorResponse struct {
	Error  string `json:"error"`
	Hint   string `json:"hint,omitempty"`
	Result any    `json:"result,omitempty"`
}

// writeQueryError maps query-phase outcomes to responses. No-result outcomes
// carry the empty result and a hint.
func (h *Handler) writeQueryError(w http.ResponseWriter, r *http.Request, q string, err error, empty any) {
	status := apperrors.HTTPStatusCode(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		h.writeJSON(w, status, errorResponse{Error: err.Error(), Hint: hint, Result: empty})
	case errors.Is(err, apperrors.ErrEmptyQuery):
		h.writeJSON(w, status, errorResponse{Error: err.Error(), Result: empty})
	default:
		logger.FromContext(r.Context()).Error("query failed", "query", strings.TrimSpace(q), "error", err)
		h.writeError(w, status, "query failed")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Message)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
