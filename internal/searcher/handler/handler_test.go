package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/history"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	idx := index.New()
	idx.AddDocument("a.txt", strings.Fields("The cats were running across the garden with other cats"))
	idx.AddDocument("b.txt", strings.Fields("A dog was running and jumping in the garden"))
	exec := executor.New(query.New(idx, config.Default().Index), executor.Options{
		History: history.New(20),
		Source:  "http",
	})
	mux := http.NewServeMux()
	New(exec, idx, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, dst any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	return resp.StatusCode
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var match query.WordMatch
	status := getJSON(t, srv, "/api/v1/search?q=cats", &match)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cat", match.Term)
	assert.Equal(t, 2, match.Total)

	var miss errorResponse
	status = getJSON(t, srv, "/api/v1/search?q=unicorn", &miss)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, hint, miss.Hint)

	status = getJSON(t, srv, "/api/v1/search?q=", &miss)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDetailsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var got detailsResponse
	status := getJSON(t, srv, "/api/v1/details?q=running", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Word: running [stemmed: run]", got.Lines[0])
	assert.Len(t, got.Lines, 5)
}

func TestCompletionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var c query.Completion
	status := getJSON(t, srv, "/api/v1/autocomplete?prefix=ga", &c)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"garden"}, c.Terms)

	status = getJSON(t, srv, "/api/v1/partial?prefix=ju", &c)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"jump"}, c.Terms)
}

func TestAdvancedEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var set query.DocumentSet
	status := getJSON(t, srv, "/api/v1/advanced?q=running+garden", &set)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"a.txt", "b.txt"}, set.Paths)
}

func TestSpellEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var got struct {
		Suggestions []struct {
			Term     string `json:"term"`
			Distance int    `json:"distance"`
		} `json:"suggestions"`
	}
	status := getJSON(t, srv, "/api/v1/spell?q=gardn", &got)
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, got.Suggestions)
	assert.Equal(t, "garden", got.Suggestions[0].Term)
	assert.Equal(t, 1, got.Suggestions[0].Distance)
}

func TestProximityEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var got proximityResponse
	status := getJSON(t, srv, "/api/v1/proximity?w1=dog&w2=garden&distance=4", &got)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, "b.txt", got.Matches[0].Path)
	assert.Equal(t, 4, got.Matches[0].Distance)

	var bad errorResponse
	status = getJSON(t, srv, "/api/v1/proximity?w1=dog&w2=garden&distance=x", &bad)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var ignored any
	getJSON(t, srv, "/api/v1/search?q=cats", &ignored)
	getJSON(t, srv, "/api/v1/autocomplete?prefix=ga", &ignored)

	var got struct {
		Queries []string `json:"queries"`
	}
	status := getJSON(t, srv, "/api/v1/history", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"ga", "cats"}, got.Queries)
}

func TestStatsAndCacheEndpoints(t *testing.T) {
	srv := newTestServer(t)
	var st index.Stats
	status := getJSON(t, srv, "/api/v1/stats", &st)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, st.Documents)

	var cs map[string]string
	getJSON(t, srv, "/api/v1/cache/stats", &cs)
	assert.Equal(t, "disabled", cs["status"])

	resp, err := http.Post(srv.URL+"/api/v1/cache/invalidate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
