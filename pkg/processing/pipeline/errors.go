package pipeline

import (
	"fmt"

	"github.com/vnykmshr/nexus/pkg/common/errors"
)

// StageError attributes a failure to one stage of a pipeline. Its message is
// the stage's own message.
type StageError struct {
	Pipeline string
	Stage    string
	Position int
	Err      error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the stage's error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Location describes where the failure happened, e.g. "Stage 2 (transform)".
func (e *StageError) Location() string {
	return fmt.Sprintf("Stage %d (%s)", e.Position, e.Stage)
}

func errNilRecord(stageName string) error {
	return errors.NewDomainError(stageName, "stage %s returned no record", stageName)
}

func errStagePanic(stageName string, r interface{}) error {
	return errors.NewDomainError(stageName, "stage %s panicked: %v", stageName, r)
}

func errEmptyOutput() error {
	return errors.NewDomainError("output", "pipeline produced empty output")
}
