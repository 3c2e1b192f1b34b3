/*
Package manager provides the registry that owns pipelines by id and
dispatches work to them.

# Quick Start

	m := manager.New()
	m.Register(pipeline.NewJSON("PIPE_JSON"))
	m.Register(pipeline.NewCSV("PIPE_CSV"))

	out, err := m.RunPipeline(ctx, "PIPE_JSON", `{"sensor": "temp", "value": 23.5, "unit": "C"}`)

# Chaining

Chain feeds each pipeline's output to the next one. The first failing link
stops the chain and is named in the returned *errors.OperationError:

	out, err := m.Chain(ctx, []string{"PIPE_JSON", "PIPE_CSV"}, raw)

# Recovery

RunWithRecovery logs a primary failure to the bounded error log and retries
the same raw input on a backup pipeline. Backups are ordinary pipelines,
usually built with the permissive stage set:

	backup, _ := pipeline.NewWithConfig(pipeline.FormatJSON, "PIPE_JSON_BACKUP",
		pipeline.Config{Stages: stage.Recovery()})

	out, err := m.RunWithRecovery(ctx, "PIPE_JSON", raw, backup)
	fmt.Println(m.ErrorLog())

# Capacity

Dispatches pass through a token bucket sized by Config.Capacity (1000 per
second by default). RunBatch runs independent jobs in parallel up to
Config.Parallelism.

# Thread Safety

The registry and error log are guarded by the manager. Calls into the same
pipeline serialize on that pipeline; distinct pipelines run in parallel.
*/
package manager
