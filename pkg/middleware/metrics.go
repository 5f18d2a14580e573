// Package middleware provides HTTP middleware for request IDs, access
// logging, Prometheus metrics, panics and request timeouts.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

// Metrics counts requests by route and status, times them and tracks the
// number in flight.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(r.URL.Path)
			timer := prometheus.NewTimer(m.HTTPRequestDuration.WithLabelValues(r.Method, route))
			m.HTTPRequestsInFlight.Inc()

			rec := newStatusRecorder(w)
			defer func() {
				m.HTTPRequestsInFlight.Dec()
				timer.ObserveDuration()
				m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// statusRecorder remembers the first status code written.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.written {
		s.status, s.written = code, true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.written = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// routeLabel maps unknown paths to "other" so scans cannot grow the label set.
func routeLabel(path string) string {
	if path == "/metrics" || strings.HasPrefix(path, "/api/v1/") || strings.HasPrefix(path, "/health/") {
		return path
	}
	return "other"
}
