package middleware

import (
	"net/http"
	"time"

	"atlashq/meridian/pkg/telemetry/metrics"
)

// MetricsMiddleware records request counts and latencies per route. The
// mux is consulted for the matched route pattern so path parameters (e.g.
// version ids) do not blow up label cardinality.
func MetricsMiddleware(collector *metrics.Collector, mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := r.URL.Path
			if _, pattern := mux.Handler(r); pattern != "" {
				route = pattern
			}
			collector.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
