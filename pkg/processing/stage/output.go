package stage

import (
	"context"
	"fmt"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/processing/record"
)

// Output renders a transformed record to its display string.
type Output struct{}

// Name returns "output".
func (Output) Name() string { return NameOutput }

// Process sets rec.Output from rec.Transformed.
func (Output) Process(_ context.Context, rec *record.Record) (*record.Record, error) {
	if rec == nil {
		return nil, errors.NewShapeError(NameOutput, "OutputStage expects a record")
	}

	switch rec.Kind {
	case record.KindJSON:
		r, ok := rec.Transformed.(record.Reading)
		if !ok {
			return nil, errors.NewDomainError(NameOutput, "JSON transformed data must be a reading")
		}
		rec.Output = fmt.Sprintf("Processed temperature reading: %.1f°C (%s)", r.Value, r.Status)

	case record.KindCSV:
		h, ok := rec.Transformed.(record.Header)
		if !ok {
			return nil, errors.NewDomainError(NameOutput, "CSV transformed data must be a header")
		}
		rec.Output = fmt.Sprintf("User activity logged: %d actions processed", h.ActionsProcessed)

	case record.KindStream:
		s, ok := rec.Transformed.(record.Summary)
		if !ok {
			return nil, errors.NewDomainError(NameOutput, "Stream transformed data must be a summary")
		}
		rec.Output = fmt.Sprintf("Stream summary: %d readings, avg: %.1f°C", s.Count, s.Avg)

	default:
		return nil, errors.NewDomainError(NameOutput, "Unknown kind: %s", rec.Kind)
	}

	return rec, nil
}
