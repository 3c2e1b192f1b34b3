/*
Package stage provides the processing steps every nexus pipeline runs.

A pipeline drives a record through an ordered list of stages. The standard
sequence is:

	stage.Default() // Input, Transform, Output

Input checks that the adapter produced a well-formed record and marks it
validated. Transform stamps metadata and computes a kind-specific result:

	json    Reading{Sensor, Value, Unit, Status}
	csv     Header{Fields, ActionsProcessed}
	stream  Summary{Count, Avg}

Output renders that result:

	Processed temperature reading: 23.5°C (Normal range)
	User activity logged: 1 actions processed
	Stream summary: 5 readings, avg: 22.1°C

# Recovery Variants

Backup pipelines are built with stage.Recovery(), which swaps Transform for
SafeTransform. SafeTransform never rejects content; a JSON record whose value
is not numeric renders as

	Processed temperature reading: 0.0°C (Recovered)

# Custom Stages

	upper := stage.NewStageFunc("upper", func(ctx context.Context, rec *record.Record) (*record.Record, error) {
		rec.Output = strings.ToUpper(rec.Output)
		return rec, nil
	})

	stages := append(stage.Default(), upper)

Stages are stateless apart from their clock and are safe for concurrent use.
*/
package stage
