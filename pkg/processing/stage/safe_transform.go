package stage

import (
	"context"
	"strconv"
	"strings"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/processing/record"
)

// SafeTransform is the permissive transform used by backup pipelines. Where
// Transform rejects content, SafeTransform fabricates a result marked
// Recovered so the output stage can still render something.
type SafeTransform struct {
	clock Clock
}

// NewSafeTransform creates a safe transform stage using the system time.
func NewSafeTransform() *SafeTransform {
	return &SafeTransform{clock: systemClock{}}
}

// Name returns "safe-transform".
func (s *SafeTransform) Name() string { return NameSafeTransform }

// Process never fails on record content, only on a missing record.
func (s *SafeTransform) Process(_ context.Context, rec *record.Record) (*record.Record, error) {
	if rec == nil {
		return nil, errors.NewShapeError(NameSafeTransform, "SafeTransformStage expects a record")
	}
	enrich(rec, s.clock)

	switch rec.Kind {
	case record.KindJSON:
		obj, _ := rec.Parsed.(record.JSONObject)
		rec.Transformed = record.Reading{
			Sensor: stringField(obj, "sensor", "unknown"),
			Value:  lenientNumber(obj["value"]),
			Unit:   stringField(obj, "unit", ""),
			Status: StatusRecovered,
		}
	case record.KindCSV:
		fields, _ := rec.Parsed.(record.CSVFields)
		rec.Transformed = header(fields)
	case record.KindStream:
		readings, _ := rec.Parsed.(record.StreamReadings)
		rec.Transformed = summarize(record.Numbers(readings))
	default:
		// Output rejects the kind; there is nothing sensible to fabricate here.
		rec.Transformed = nil
	}
	return rec, nil
}

// lenientNumber converts numbers and numeric strings, defaulting to 0.
func lenientNumber(v interface{}) float64 {
	if n, ok := record.AsNumber(v); ok {
		return n
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return 0
}
