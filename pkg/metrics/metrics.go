// Package metrics provides the Prometheus registry, the HTTP exposition
// handler and the HTTP server metrics of the breeds proxy.
// Component metrics are defined in their respective packages (cache, client,
// service) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// HTTP server metrics.
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breeds_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "breeds_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Handler returns the Prometheus exposition handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHandler records request count and latency for next under route.
// route should be the mux pattern, not the raw path, to bound label cardinality.
func InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rw.status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - breeds_cache_hits_total{namespace} (Counter): Cache hits by key namespace (breeds, breed)
//   - breeds_cache_misses_total{namespace} (Counter): Cache misses, absent or expired
//   - breeds_cache_entries (Gauge): Entries currently held
//   - breeds_cache_evictions_total{reason} (Counter): Entries removed (expired, sweep, delete)
//   - breeds_cache_errors_total{operation} (Counter): Encode/decode errors
//
// Upstream Metrics (pkg/client):
//   - breeds_upstream_requests_total{status} (Counter): Upstream attempts by HTTP status
//   - breeds_upstream_request_duration_seconds (Histogram): Attempt duration
//   - breeds_upstream_errors_total{class} (Counter): Failed attempts by class (client, server, network, decode)
//   - breeds_upstream_shared_fetches_total (Counter): Callers served by an in-flight fetch
//
// Retry Metrics (pkg/client):
//   - breeds_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - breeds_upstream_retry_backoff_seconds (Histogram): Backoff before each retry
//   - breeds_upstream_retry_exhausted_total (Counter): Fetches that exhausted all attempts
//
// Service Metrics (pkg/service):
//   - breeds_service_requests_total{operation, result} (Counter): Operations by result (hit, miss, not_found, invalid, error)
//   - breeds_service_duration_seconds{operation} (Histogram): Operation duration
//
// HTTP Metrics (pkg/metrics):
//   - breeds_http_requests_total{route, status} (Counter): Requests by route and status
//   - breeds_http_request_duration_seconds{route} (Histogram): Request duration by route
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(breeds_cache_hits_total[5m])) /
//   (sum(rate(breeds_cache_hits_total[5m])) + sum(rate(breeds_cache_misses_total[5m])))
//
//   # Upstream Outages
//   rate(breeds_upstream_retry_exhausted_total[5m]) > 0
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(breeds_http_request_duration_seconds_bucket[5m]))
