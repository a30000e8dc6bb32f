package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_automation"

// RunnerMetrics holds the Prometheus collectors for the scheduled runner.
type RunnerMetrics struct {
	Occasions     *prometheus.CounterVec // labels: trigger={startup,schedule,once}, outcome={success,exhausted,cancelled}
	Attempts      *prometheus.CounterVec // labels: outcome={success,failure}
	RunDuration   prometheus.Histogram
	LastSuccess   prometheus.Gauge
	Records       *prometheus.GaugeVec // labels: kind={current,forecast}
	RunnerRunning prometheus.Gauge
}

// NewRunnerMetrics creates and registers the runner metrics with the default
// Prometheus registry.
func NewRunnerMetrics() *RunnerMetrics {
	m := NewRunnerMetricsForTesting()
	prometheus.MustRegister(
		m.Occasions,
		m.Attempts,
		m.RunDuration,
		m.LastSuccess,
		m.Records,
		m.RunnerRunning,
	)
	return m
}

// NewRunnerMetricsForTesting creates RunnerMetrics without registering them,
// so tests can build as many as they need.
func NewRunnerMetricsForTesting() *RunnerMetrics {
	return &RunnerMetrics{
		Occasions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "occasions_total",
			Help:      "Scheduled occasions by trigger and final outcome.",
		}, []string{"trigger", "outcome"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "attempts_total",
			Help:      "Individual pipeline attempts by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "occasion_duration_seconds",
			Help:      "Wall time of a scheduled occasion including retry waits.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful pipeline run.",
		}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "records_loaded",
			Help:      "Rows loaded by the last successful run.",
		}, []string{"kind"}),
		RunnerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "running",
			Help:      "1 while the schedule loop is active, 0 when shut down.",
		}),
	}
}

// DashboardMetrics holds the Prometheus collectors for the dashboard reader.
type DashboardMetrics struct {
	StoreQueries   *prometheus.CounterVec   // labels: table={forecast_data,alerts_data}, outcome={success,error}
	StoreDuration  *prometheus.HistogramVec // labels: table
	CacheLookups   *prometheus.CounterVec   // labels: table, result={hit,miss}
	RenderDuration prometheus.Histogram
	RenderErrors   prometheus.Counter
}

// NewDashboardMetrics creates and registers the dashboard metrics with the
// default Prometheus registry.
func NewDashboardMetrics() *DashboardMetrics {
	m := NewDashboardMetricsForTesting()
	prometheus.MustRegister(
		m.StoreQueries,
		m.StoreDuration,
		m.CacheLookups,
		m.RenderDuration,
		m.RenderErrors,
	)
	return m
}

// NewDashboardMetricsForTesting creates DashboardMetrics with no registry to
// avoid "already registered" panics when called from multiple tests.
func NewDashboardMetricsForTesting() *DashboardMetrics {
	return &DashboardMetrics{
		StoreQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "store_queries_total",
			Help:      "Store reads by table and outcome.",
		}, []string{"table", "outcome"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "store_query_duration_seconds",
			Help:      "Store read latency by table.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"table"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by table and result.",
		}, []string{"table", "result"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "render_duration_seconds",
			Help:      "Duration of a full dashboard render pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "render_errors_total",
			Help:      "Render passes that ended with an inline error.",
		}),
	}
}
