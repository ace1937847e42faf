// Package metrics provides the Prometheus registry and scrape handler for canvaspal.
// All metrics are defined in their respective packages (client, pagination,
// ratelimit, refresh, ...) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by canvaspal.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Token Metrics (pkg/tokens):
//   - canvas_token_rotations_total{credential} (Counter): Credentials handed out, by fingerprint
//
// Rate Limit Metrics (pkg/ratelimit):
//   - canvas_rate_limit_remaining{credential} (Gauge): Last X-Rate-Limit-Remaining per credential
//   - canvas_request_cost (Histogram): X-Request-Cost of observed requests
//   - canvas_rate_limit_low_total (Counter): Observations below the low-quota threshold
//
// Request Metrics (pkg/client):
//   - canvas_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - canvas_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - canvas_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Pagination Metrics (pkg/pagination):
//   - canvas_pages_fetched_total{endpoint} (Counter): Pages fetched successfully
//   - canvas_paginated_fetches_total{result} (Counter): FetchAll calls by result (success, failure)
//
// Aggregation Metrics (pkg/canvas):
//   - canvas_detail_fetch_failures_total{resource} (Counter): Course detail fetches shown as empty lists
//
// Refresh Metrics (pkg/refresh):
//   - canvas_refresh_passes_total{result} (Counter): Completed passes by result (success, failure)
//   - canvas_refresh_duration_seconds (Histogram): Duration of a full pass
//   - canvas_refresh_triggers_dropped_total (Counter): Triggers ignored while a pass was running
//   - canvas_dataset_courses (Gauge): Courses in the last delivered dataset
//
// Example Prometheus Queries:
//
//   # Pass failure ratio
//   sum(rate(canvas_refresh_passes_total{result="failure"}[1h])) /
//   sum(rate(canvas_refresh_passes_total[1h]))
//
//   # Credentials running low
//   canvas_rate_limit_remaining < 100
//
//   # Request Error Rate
//   rate(canvas_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(canvas_request_duration_seconds_bucket[5m]))
//
//   # Rotation balance across credentials
//   sum by (credential) (rate(canvas_token_rotations_total[1h]))
