// Package metrics provides Prometheus instrumentation for nexus components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for nexus components.
type Registry struct {
	// Pipeline Metrics
	PipelineRuns     *prometheus.CounterVec
	PipelineErrors   *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	StageFailures    *prometheus.CounterVec

	// Manager Metrics
	Dispatches       *prometheus.CounterVec
	ChainLinks       *prometheus.CounterVec
	Recoveries       *prometheus.CounterVec
	ErrorLogEntries  prometheus.Gauge
	ThrottleWaitTime prometheus.Histogram

	// Reporter Metrics
	ReportsEmitted *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
// using the default namespace.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry from config. It returns nil
// when metrics are disabled; components treat a nil registry as "no metrics".
func NewRegistryWithConfig(config Config) *Registry {
	if !config.Enabled {
		return nil
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if config.Namespace == "" {
		config.Namespace = DefaultNamespace
	}

	factory := promauto.With(config.Registry)
	ns := config.Namespace
	labels := config.Labels

	return &Registry{
		PipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "runs_total",
				Help:        "Total number of pipeline process calls",
				ConstLabels: labels,
			},
			[]string{"pipeline_id", "pipeline_type"},
		),

		PipelineErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "errors_total",
				Help:        "Total number of failed pipeline process calls",
				ConstLabels: labels,
			},
			[]string{"pipeline_id", "pipeline_type"},
		),

		PipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "duration_seconds",
				Help:        "Time spent in pipeline process calls",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"pipeline_id", "pipeline_type"},
		),

		StageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "stage_failures_total",
				Help:        "Total number of stage failures by stage name",
				ConstLabels: labels,
			},
			[]string{"pipeline_id", "stage"},
		),

		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "manager",
				Name:        "dispatches_total",
				Help:        "Total number of pipeline dispatches by outcome",
				ConstLabels: labels,
			},
			[]string{"pipeline_id", "outcome"},
		),

		ChainLinks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "manager",
				Name:        "chain_links_total",
				Help:        "Total number of chain links executed by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),

		Recoveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "manager",
				Name:        "recoveries_total",
				Help:        "Total number of recovery attempts by outcome",
				ConstLabels: labels,
			},
			[]string{"pipeline_id", "outcome"},
		),

		ErrorLogEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "manager",
				Name:        "error_log_entries",
				Help:        "Current number of entries in the recovery error log",
				ConstLabels: labels,
			},
		),

		ThrottleWaitTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "manager",
				Name:        "throttle_wait_seconds",
				Help:        "Time spent waiting for dispatch capacity",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
		),

		ReportsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "reporter",
				Name:        "reports_total",
				Help:        "Total number of scheduled reports by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
	}
}
