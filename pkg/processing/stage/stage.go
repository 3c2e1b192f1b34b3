package stage

import (
	"context"

	"github.com/vnykmshr/nexus/pkg/processing/record"
)

// Stage names used in errors, logs and metrics.
const (
	NameInput         = "input"
	NameTransform     = "transform"
	NameOutput        = "output"
	NameSafeTransform = "safe-transform"
)

// Stage represents a single processing step applied to a record.
type Stage interface {
	// Process checks and advances the record, returning it or an error
	// when the record does not have the shape the stage requires.
	Process(ctx context.Context, rec *record.Record) (*record.Record, error)

	// Name returns a unique identifier for this stage.
	Name() string
}

// StageFunc is a function type that implements the Stage interface.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, rec *record.Record) (*record.Record, error)
}

// Process implements the Stage interface for StageFunc.
func (sf *StageFunc) Process(ctx context.Context, rec *record.Record) (*record.Record, error) {
	return sf.fn(ctx, rec)
}

// Name returns the stage name.
func (sf *StageFunc) Name() string {
	return sf.name
}

// NewStageFunc creates a new stage from a function.
func NewStageFunc(name string, fn func(ctx context.Context, rec *record.Record) (*record.Record, error)) Stage {
	return &StageFunc{name: name, fn: fn}
}

// Default returns the standard Input, Transform, Output sequence.
func Default() []Stage {
	return []Stage{Input{}, NewTransform(), Output{}}
}

// Recovery returns the sequence used by backup pipelines, where the transform
// fabricates a recovered result instead of failing on bad content.
func Recovery() []Stage {
	return []Stage{Input{}, NewSafeTransform(), Output{}}
}
