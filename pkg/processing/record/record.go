// Package record defines the unit of work threaded through a pipeline's stages.
//
// A Record is created by a format adapter, validated by the input stage,
// enriched by the transform stage and rendered by the output stage. The
// parsed and transformed payloads are closed sets of variants keyed by Kind,
// so each stage can check with a type switch that the shape it receives
// matches the record's kind.
package record

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags the input encoding a record came from.
type Kind string

// Supported kinds. Kind is an open string type so that foreign kinds can be
// represented and rejected by the stages.
const (
	KindJSON   Kind = "json"
	KindCSV    Kind = "csv"
	KindStream Kind = "stream"
)

// Record is the mutable context passed from stage to stage. It is owned by a
// single pipeline invocation and never shared.
type Record struct {
	// ID identifies the invocation in logs.
	ID string

	Kind Kind

	// Raw is the original adapter input.
	Raw interface{}

	// Parsed is the adapter's intermediate structure.
	Parsed Parsed

	// Validated is set by the input stage.
	Validated bool

	// Metadata is stamped by the transform stage.
	Metadata *Metadata

	// Transformed is the kind-specific result of the transform stage.
	Transformed Transformed

	// Output is the rendered summary set by the output stage.
	Output string
}

// New creates a record with a fresh ID.
func New(kind Kind, raw interface{}, parsed Parsed) *Record {
	return &Record{
		ID:     uuid.NewString(),
		Kind:   kind,
		Raw:    raw,
		Parsed: parsed,
	}
}

// Metadata is the enrichment added before kind-specific transformation.
type Metadata struct {
	Timestamp time.Time
	Enriched  bool
}

// Parsed is implemented by JSONObject, CSVFields and StreamReadings.
type Parsed interface {
	parsedKind() Kind
}

// JSONObject is a decoded key/value record.
type JSONObject map[string]interface{}

func (JSONObject) parsedKind() Kind { return KindJSON }

// CSVFields is a delimited header split into non-empty fields.
type CSVFields []string

func (CSVFields) parsedKind() Kind { return KindCSV }

// StreamReadings is a batch of readings; non-numeric entries are allowed and
// filtered out by the transform stage.
type StreamReadings []interface{}

func (StreamReadings) parsedKind() Kind { return KindStream }

// Transformed is implemented by Reading, Header and Summary.
type Transformed interface {
	transformedKind() Kind
}

// Reading is the transform result for a structured sensor record.
type Reading struct {
	Sensor string
	Value  float64
	Unit   string
	Status string
}

func (Reading) transformedKind() Kind { return KindJSON }

// Header is the transform result for a delimited header line.
type Header struct {
	Fields []string

	// ActionsProcessed counts header operations, one per transform call.
	ActionsProcessed int
}

func (Header) transformedKind() Kind { return KindCSV }

// Summary is the transform result for a numeric stream batch.
type Summary struct {
	Count int
	Avg   float64
}

func (Summary) transformedKind() Kind { return KindStream }

// KindOf returns the kind a parsed or transformed payload belongs to, or the
// empty kind for nil.
func KindOf(v interface{}) Kind {
	switch p := v.(type) {
	case Parsed:
		return p.parsedKind()
	case Transformed:
		return p.transformedKind()
	default:
		return ""
	}
}
