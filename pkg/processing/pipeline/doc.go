/*
Package pipeline provides format adapters that drive raw input through a
fixed sequence of processing stages and keep per-pipeline statistics.

# Quick Start

	p := pipeline.NewJSON("PIPE_JSON")

	out, err := p.Process(ctx, `{"sensor": "temp", "value": 23.5, "unit": "C"}`)
	// out == "Processed temperature reading: 23.5°C (Normal range)"

# Formats

Each format has an adapter that parses raw input into a record before the
shared stages run:

	json    string or []byte holding a JSON object with a numeric "value"
	csv     a single comma-delimited header line
	stream  an in-memory batch ([]float64, []int, []interface{}, ...); strings are rejected

	pipeline.NewJSON("PIPE_JSON")
	pipeline.NewCSV("PIPE_CSV")
	pipeline.NewStream("PIPE_STREAM")

# Configuration

	config := pipeline.Config{
		Stages:  stage.Recovery(),   // replaces the default Input, Transform, Output
		Logger:  slog.Default(),
		Metrics: metrics.NewRegistry(prometheus.NewRegistry()),
		OnStageComplete: func(r pipeline.StageResult) {
			log.Printf("%s took %v", r.StageName, r.Duration)
		},
	}

	backup, err := pipeline.NewWithConfig(pipeline.FormatJSON, "PIPE_JSON_BACKUP", config)

The stage sequence is fixed at construction, so a recovery variant is a
separate pipeline rather than a mutated copy of the primary.

# Statistics

Every Process call is timed and recorded exactly once, including calls that
fail during parsing:

	stats := p.Stats()
	fmt.Printf("runs=%d errors=%d efficiency=%.1f%%\n",
		stats.ProcessedBatches, stats.ErrorCount, stats.Efficiency()*100)

# Errors

Parse failures are shape errors; stage failures are wrapped in *StageError,
which keeps the stage's message and exposes its position:

	var se *pipeline.StageError
	if errors.As(err, &se) {
		fmt.Println(se.Location()) // Stage 2 (transform)
	}

# Thread Safety

Calls into the same pipeline are serialized; distinct pipelines can run in
parallel. Stats can be read while a call is in flight.
*/
package pipeline
