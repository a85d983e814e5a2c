// Package metrics provides the Prometheus registry used by the Wise client.
// Metrics are defined in their owning packages (client, checkpoint) and
// registered through promauto; this package documents them and exposes the
// registry and gatherer for tools that serve /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Wise client.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry, for promhttp.HandlerFor.
var Gatherer = prometheus.DefaultGatherer

// Names lists every metric family the module registers.
var Names = []string{
	"wise_requests_total",
	"wise_request_duration_seconds",
	"wise_errors_total",
	"wise_sca_challenges_total",
	"wise_activity_pages_total",
	"wise_checkpoint_hits_total",
	"wise_checkpoint_misses_total",
	"wise_checkpoint_writes_total",
	"wise_checkpoint_errors_total",
	"wise_export_activities_total",
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - wise_requests_total{endpoint, status} (Counter): HTTP round-trips by endpoint name and status
//   - wise_request_duration_seconds{endpoint} (Histogram): logical request duration, SCA replay included
//   - wise_errors_total{class} (Counter): errors by class (client, server, sca, network)
//   - wise_sca_challenges_total{outcome} (Counter): SCA challenges by outcome (approved, rejected, failed, sign_error)
//   - wise_activity_pages_total (Counter): activity pages fetched
//
// Checkpoint Metrics (pkg/checkpoint):
//   - wise_checkpoint_hits_total (Counter): checkpoint lookups with a stored position
//   - wise_checkpoint_misses_total (Counter): checkpoint lookups without one
//   - wise_checkpoint_writes_total (Counter): checkpoints saved
//   - wise_checkpoint_errors_total{operation} (Counter): Redis errors by operation
//
// Export Metrics (cmd/wise-export):
//   - wise_export_activities_total (Counter): activities written
//
// Example Prometheus Queries:
//
//   # SCA rejection rate
//   rate(wise_sca_challenges_total{outcome="rejected"}[5m])
//
//   # Server error rate
//   rate(wise_errors_total{class="server"}[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(wise_request_duration_seconds_bucket[5m]))
