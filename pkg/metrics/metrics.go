// Package metrics provides the central Prometheus registry reference for
// the exporter. All metrics are defined in their respective packages
// (client, ratelimit, pagination, export) to maintain modularity and avoid
// circular dependencies.
//
// The exporter is a run-to-completion process, so no scrape endpoint is
// served; metrics are collected in-process and asserted in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the exporter.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ghaudit_requests_total{status} (Counter): Total requests by HTTP status
//   - ghaudit_request_duration_seconds (Histogram): Request duration
//   - ghaudit_errors_total{class} (Counter): Errors by class (auth, client, server, network)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - ghaudit_rate_limit_remaining (Gauge): Budget remaining in the current window
//   - ghaudit_rate_limit_warnings_total (Counter): Low-budget observations
//
// Pagination Metrics (pkg/pagination):
//   - ghaudit_pages_fetched_total (Counter): Pages fetched
//   - ghaudit_records_fetched_total (Counter): Records accumulated
//
// Export Metrics (pkg/export):
//   - ghaudit_exports_total{format} (Counter): Completed exports by format
