package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/WessleyAI/mediacrawl/pkg/metrics"
)

// Task outcomes as recorded by AwaitCompletion.
const (
	outcomeCompleted   = "completed"
	outcomeFailed      = "failed"
	outcomeTimedOut    = "timed_out"
	outcomeUnavailable = "unavailable"
	outcomeCancelled   = "cancelled"
)

// Metrics are the orchestrator's Prometheus collectors.
type Metrics struct {
	started  *prometheus.CounterVec
	polls    *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	awaiting *prometheus.GaugeVec
}

// NewMetrics registers the orchestrator collectors on r.
func NewMetrics(r *metrics.Registry) *Metrics {
	return &Metrics{
		started: r.Counter("mediacrawl_tasks_started_total",
			"Crawl tasks accepted by the backend.", "source"),
		polls: r.Counter("mediacrawl_polls_total",
			"Status polls by observed status.", "status"),
		outcomes: r.Counter("mediacrawl_task_outcomes_total",
			"Awaited task outcomes.", "outcome"),
		latency: r.Histogram("mediacrawl_backend_request_seconds",
			"Backend request latency.", nil, "op"),
		awaiting: r.Gauge("mediacrawl_tasks_awaiting",
			"Tasks currently inside AwaitCompletion.", "source"),
	}
}
