// Package metrics provides Prometheus instrumentation for nexus components.
//
// Pipelines and the manager record into a *Registry when one is supplied in
// their Config; a nil registry disables instrumentation.
//
// # Quick Start
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewRegistry(reg)
//
//	p, _ := pipeline.NewWithConfig(pipeline.FormatJSON, "PIPE_JSON", pipeline.Config{Metrics: m})
//	mgr, _ := manager.NewWithConfig(manager.Config{Metrics: m, ErrorLogSize: 50})
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// ## Pipeline Metrics
//
//   - nexus_pipeline_runs_total: Process calls per pipeline
//   - nexus_pipeline_errors_total: Failed process calls per pipeline
//   - nexus_pipeline_duration_seconds: Process call latency
//   - nexus_pipeline_stage_failures_total: Failures attributed to a stage
//
// ## Manager Metrics
//
//   - nexus_manager_dispatches_total: Dispatches by pipeline and outcome ("ok", "error", "not_found")
//   - nexus_manager_chain_links_total: Chain links by outcome
//   - nexus_manager_recoveries_total: Recovery attempts by outcome ("recovered", "failed", "unrecovered")
//   - nexus_manager_error_log_entries: Current error log length
//   - nexus_manager_throttle_wait_seconds: Time spent waiting for dispatch capacity
//
// ## Reporter Metrics
//
//   - nexus_reporter_reports_total: Scheduled reports by outcome
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "myapp",                           // Override default "nexus"
//		Labels:    prometheus.Labels{"version": "1.0"}, // Added to every metric
//	}
//	m := metrics.NewRegistryWithConfig(config)
//
// Each Registry registers its collectors once; use a separate Prometheus
// registry per Registry to avoid duplicate registration panics.
package metrics
