package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoImageReturned = errors.New("no image returned")
	ErrNoVideoReturned = errors.New("no video returned")
	ErrStaleResult     = errors.New("stale result")
)

// ErrorClass buckets every failure the core can surface. Validation errors are
// resolved before any network call; all gateway-origin failures arrive already
// normalized into one of the gateway classes with a human-readable message.
type ErrorClass string

const (
	ErrorClassValidation   ErrorClass = "validation"
	ErrorClassRefusal      ErrorClass = "refusal"
	ErrorClassTransient    ErrorClass = "transient"
	ErrorClassUnknown      ErrorClass = "unknown"
	ErrorClassPipelineStep ErrorClass = "pipeline_step"
)

// GenerationError is the single error shape the orchestrator and handlers
// consume. Message is always safe to show to the user.
type GenerationError struct {
	Class   ErrorClass
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewValidationError reports a missing or malformed user input.
func NewValidationError(message string) *GenerationError {
	return &GenerationError{Class: ErrorClassValidation, Message: message}
}

// NewPipelineStepError reports a required intermediate step that produced no
// usable output, which is fatal to the whole multi-step pipeline.
func NewPipelineStepError(message string, cause error) *GenerationError {
	return &GenerationError{Class: ErrorClassPipelineStep, Message: message, Cause: cause}
}

// ClassOf extracts the taxonomy class from an error chain, defaulting to the
// unknown class for errors that never passed through normalization.
func ClassOf(err error) ErrorClass {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Class
	}
	return ErrorClassUnknown
}
