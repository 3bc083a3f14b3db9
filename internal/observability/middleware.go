// Package observability provides HTTP middleware for metrics and logging.
package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"meeting-transcript-relay/internal/observability/metrics"
)

// RequestMetrics returns middleware that records latency and status for every request
// and writes one access log line per request.
func RequestMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			m.RecordHTTPRequest(route, r.Method, status, duration.Seconds())

			ev := log.Info()
			if status >= http.StatusInternalServerError {
				ev = log.Warn()
			}
			ev.Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Dur("duration", duration).
				Str("requestId", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}

// routePattern returns the matched chi pattern so metric labels stay bounded.
// Mounted subrouters report their root as "/path/", which is labeled "/path".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			if len(p) > 1 {
				p = strings.TrimSuffix(p, "/")
			}
			return p
		}
	}
	return "unmatched"
}
