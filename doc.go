/*
Package nexus provides staged, multi-format data processing pipelines.

Raw input is parsed by a format adapter, checked, transformed and rendered to
a summary line while each pipeline keeps run, error and timing statistics.

Processing (pkg/processing):
  - record: the per-invocation record and its parsed and transformed variants
  - stage: Input, Transform, Output and the permissive SafeTransform
  - pipeline: JSON, CSV and stream adapters with per-pipeline statistics
  - manager: registry, chaining, recovery with backup pipelines, batch dispatch
  - throttle: token bucket capping dispatches per second
  - reporter: cron-scheduled statistics reports

Support:
  - metrics: Prometheus instrumentation
  - common/errors: shape, domain and routing error taxonomy
  - common/validation: configuration validators

Example usage:

	import (
		"github.com/vnykmshr/nexus/pkg/processing/manager"
		"github.com/vnykmshr/nexus/pkg/processing/pipeline"
		"github.com/vnykmshr/nexus/pkg/processing/stage"
	)

	m := manager.New()
	m.Register(pipeline.NewJSON("PIPE_JSON"))

	out, err := m.RunPipeline(ctx, "PIPE_JSON", `{"sensor": "temp", "value": 23.5, "unit": "C"}`)
	// Processed temperature reading: 23.5°C (Normal range)

	backup, _ := pipeline.NewWithConfig(pipeline.FormatJSON, "PIPE_JSON_BACKUP",
		pipeline.Config{Stages: stage.Recovery()})
	out, err = m.RunWithRecovery(ctx, "PIPE_JSON", raw, backup)

See the package documentation for details.
*/
package nexus
