package stage

import (
	"context"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/processing/record"
)

// Input validates that a record carries kind, raw and parsed before any
// format-specific work runs.
type Input struct{}

// Name returns "input".
func (Input) Name() string { return NameInput }

// Process marks a well-formed record as validated.
func (Input) Process(_ context.Context, rec *record.Record) (*record.Record, error) {
	if rec == nil {
		return nil, errors.NewShapeError(NameInput, "InputStage expects a record")
	}
	if rec.Kind == "" || rec.Raw == nil || rec.Parsed == nil {
		return nil, errors.NewShapeError(NameInput, "Missing required context keys: kind/raw/parsed")
	}
	rec.Validated = true
	return rec, nil
}
