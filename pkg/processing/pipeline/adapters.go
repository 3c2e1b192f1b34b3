package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/processing/record"
)

// Format selects the adapter a pipeline uses to parse raw input.
type Format string

// Supported formats.
const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatStream Format = "stream"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatStream}
}

// Type returns the upper-case pipeline type tag reported in stats.
func (f Format) Type() string {
	return strings.ToUpper(string(f))
}

// ParseFormat converts a case-insensitive name into a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if _, err := parserFor(f); err != nil {
		return "", err
	}
	return f, nil
}

const adapterStage = "adapter"

// NewJSON creates a structured-record pipeline with the default stages.
func NewJSON(id string) Pipeline {
	return mustNew(FormatJSON, id)
}

// NewCSV creates a delimited-header pipeline with the default stages.
func NewCSV(id string) Pipeline {
	return mustNew(FormatCSV, id)
}

// NewStream creates a numeric-batch pipeline with the default stages.
func NewStream(id string) Pipeline {
	return mustNew(FormatStream, id)
}

func mustNew(format Format, id string) Pipeline {
	p, err := NewWithConfig(format, id, DefaultConfig())
	if err != nil {
		panic(err)
	}
	return p
}

func parserFor(format Format) (parseFunc, error) {
	switch format {
	case FormatJSON:
		return parseJSON, nil
	case FormatCSV:
		return parseCSV, nil
	case FormatStream:
		return parseStream, nil
	default:
		return nil, errors.NewValidationError("pipeline", "format", format, "unsupported format").
			WithHint("use json, csv or stream")
	}
}

// parseJSON decodes a textual key/value record.
func parseJSON(input interface{}) (*record.Record, error) {
	var data []byte
	switch v := input.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, errors.NewShapeError(adapterStage, "JSONAdapter expects a JSON string")
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.NewShapeError(adapterStage, "JSONAdapter could not parse input: %v", err)
	}
	if obj == nil {
		return nil, errors.NewShapeError(adapterStage, "JSONAdapter expects a JSON object")
	}

	return record.New(record.KindJSON, input, record.JSONObject(obj)), nil
}

// parseCSV splits a header line on commas, trimming and dropping empty fields.
func parseCSV(input interface{}) (*record.Record, error) {
	line, ok := input.(string)
	if !ok {
		return nil, errors.NewShapeError(adapterStage, "CSVAdapter expects a CSV string")
	}

	fields := record.CSVFields{}
	for _, token := range strings.Split(line, ",") {
		if t := strings.TrimSpace(token); t != "" {
			fields = append(fields, t)
		}
	}

	return record.New(record.KindCSV, input, fields), nil
}

// parseStream wraps an in-memory batch of readings. Text is rejected so the
// numeric path stays distinct from descriptive strings.
func parseStream(input interface{}) (*record.Record, error) {
	var readings record.StreamReadings
	switch v := input.(type) {
	case string:
		return nil, errors.NewShapeError(adapterStage, "StreamAdapter expects numeric readings list, not a description string")
	case record.StreamReadings:
		readings = append(readings, v...)
	case []interface{}:
		readings = append(readings, v...)
	case []float64:
		readings = widen(v)
	case []float32:
		readings = widen(v)
	case []int:
		readings = widen(v)
	case []int64:
		readings = widen(v)
	default:
		return nil, errors.NewShapeError(adapterStage, "StreamAdapter expects a list of readings")
	}
	if readings == nil {
		readings = record.StreamReadings{}
	}

	return record.New(record.KindStream, input, readings), nil
}

func widen[T float64 | float32 | int | int64](values []T) record.StreamReadings {
	out := make(record.StreamReadings, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
