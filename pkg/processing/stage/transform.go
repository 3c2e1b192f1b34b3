package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/processing/record"
)

// Status labels assigned to structured sensor readings.
const (
	StatusHigh      = "High"
	StatusLow       = "Low"
	StatusNormal    = "Normal range"
	StatusRecovered = "Recovered"
)

// Temperature thresholds for the High and Low labels.
const (
	HighThreshold = 30.0
	LowThreshold  = 10.0
)

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Transform enriches a validated record and computes its kind-specific result.
type Transform struct {
	clock Clock
}

// NewTransform creates a transform stage stamping metadata with the system time.
func NewTransform() *Transform {
	return &Transform{clock: systemClock{}}
}

// NewTransformWithClock creates a transform stage using clock for metadata timestamps.
func NewTransformWithClock(clock Clock) *Transform {
	if clock == nil {
		clock = systemClock{}
	}
	return &Transform{clock: clock}
}

// Name returns "transform".
func (t *Transform) Name() string { return NameTransform }

// Process stamps metadata, then dispatches on the record's kind. Metadata is
// set even when the kind-specific branch fails.
func (t *Transform) Process(_ context.Context, rec *record.Record) (*record.Record, error) {
	if rec == nil {
		return nil, errors.NewShapeError(NameTransform, "TransformStage expects a record")
	}
	enrich(rec, t.clock)

	switch rec.Kind {
	case record.KindJSON:
		obj, ok := rec.Parsed.(record.JSONObject)
		if !ok {
			return nil, errors.NewDomainError(NameTransform, "JSON parsed data must be a dict")
		}
		value, ok := record.AsNumber(obj["value"])
		if !ok {
			return nil, errors.NewDomainError(NameTransform, "JSON 'value' must be numeric")
		}
		sensor := stringField(obj, "sensor", "unknown")
		rec.Transformed = record.Reading{
			Sensor: sensor,
			Value:  value,
			Unit:   stringField(obj, "unit", ""),
			Status: classify(sensor, value),
		}

	case record.KindCSV:
		fields, ok := rec.Parsed.(record.CSVFields)
		if !ok {
			return nil, errors.NewDomainError(NameTransform, "CSV parsed data must contain 'fields'")
		}
		rec.Transformed = header(fields)

	case record.KindStream:
		readings, ok := rec.Parsed.(record.StreamReadings)
		if !ok || len(readings) == 0 {
			return nil, errors.NewDomainError(NameTransform, "Stream parsed data must contain 'readings'")
		}
		numbers := record.Numbers(readings)
		if len(numbers) == 0 {
			return nil, errors.NewDomainError(NameTransform, "No numeric readings in stream")
		}
		rec.Transformed = summarize(numbers)

	default:
		return nil, errors.NewDomainError(NameTransform, "Unknown kind: %s", rec.Kind)
	}

	return rec, nil
}

func enrich(rec *record.Record, clock Clock) {
	rec.Metadata = &record.Metadata{
		Timestamp: clock.Now(),
		Enriched:  true,
	}
}

// classify labels temperature-like sensors; any other sensor is Normal range.
func classify(sensor string, value float64) string {
	switch strings.ToLower(sensor) {
	case "temp", "temperature":
	default:
		return StatusNormal
	}
	switch {
	case value >= HighThreshold:
		return StatusHigh
	case value <= LowThreshold:
		return StatusLow
	default:
		return StatusNormal
	}
}

// stringField returns obj[key] rendered as text, or def when the key is absent.
func stringField(obj record.JSONObject, key, def string) string {
	v, ok := obj[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func header(fields record.CSVFields) record.Header {
	trimmed := make([]string, len(fields))
	for i, f := range fields {
		trimmed[i] = strings.TrimSpace(f)
	}
	return record.Header{
		Fields:           trimmed,
		ActionsProcessed: 1,
	}
}

func summarize(numbers []float64) record.Summary {
	if len(numbers) == 0 {
		return record.Summary{}
	}
	var sum float64
	for _, n := range numbers {
		sum += n
	}
	return record.Summary{
		Count: len(numbers),
		Avg:   sum / float64(len(numbers)),
	}
}
