package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the nexus library

var (
	// ErrInvalidInput indicates input that is structurally wrong for its adapter
	// (not text, not parseable, not a sequence)
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidData indicates structurally valid input that is semantically invalid
	// (non-numeric value, empty readings, unsupported kind)
	ErrInvalidData = errors.New("invalid data")

	// ErrPipelineNotFound indicates that no pipeline is registered under an id
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrClosed indicates that an operation was attempted on a stopped component
	ErrClosed = errors.New("resource is closed")
)

// ProcessingError is returned by adapters, stages and the manager's dispatch.
// The message is the bare reason; Kind classifies it and is reachable with errors.Is.
type ProcessingError struct {
	Kind   error
	Stage  string
	Reason string
}

func (e *ProcessingError) Error() string {
	return e.Reason
}

// Unwrap returns the taxonomy sentinel.
func (e *ProcessingError) Unwrap() error {
	return e.Kind
}

// NewShapeError creates a ProcessingError classified as ErrInvalidInput.
func NewShapeError(stage, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{Kind: ErrInvalidInput, Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// NewDomainError creates a ProcessingError classified as ErrInvalidData.
func NewDomainError(stage, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{Kind: ErrInvalidData, Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a routing error for an unregistered pipeline id.
func NewNotFoundError(id string) *ProcessingError {
	return &ProcessingError{
		Kind:   ErrPipelineNotFound,
		Stage:  "dispatch",
		Reason: fmt.Sprintf("Pipeline '%s' not found", id),
	}
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Module: module, Field: field, Value: value, Reason: reason}
}

// WithHint sets a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// OperationError attributes a failure to a module operation, e.g. one link of a chain.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// NewOperationError creates an OperationError without context.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{Module: module, Operation: operation, Cause: cause}
}

// WithContext sets additional context and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

// IsShapeError reports whether err is an input shape error.
func IsShapeError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDomainError reports whether err is a domain (semantic) error.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrInvalidData)
}

// IsNotFound reports whether err is a routing error for an unknown pipeline id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPipelineNotFound)
}

// IsValidationError returns true if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
