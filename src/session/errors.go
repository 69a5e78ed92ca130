package session

import (
	"errors"
	"fmt"
)

var (
	// input errors, detected before any network call
	ErrEmptyPrompt          = errors.New("prompt is empty")
	ErrEmptyOptimizedPrompt = errors.New("optimized prompt is empty")
	ErrNoSession            = errors.New("no active session")
	ErrInvalidFileIndex     = errors.New("file index out of range")

	// ErrService is matched by every *ServiceError.
	ErrService = errors.New("generation service error")
)

// ValidationError reports a missing or blank required input. Its message is
// static and safe to show to the user as-is.
type ValidationError struct {
	Op      string
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ServiceError reports a failed exchange with the generation service: a
// non-2xx status or a transport failure.
type ServiceError struct {
	Op     string // operation name
	Status int    // HTTP status, 0 for transport failures
	Detail string // "detail" field of the error body, if any
	Err    error  // underlying transport or decode error, if any
}

func (e *ServiceError) Error() string {
	msg := e.Op + ": "
	switch {
	case e.Detail != "":
		msg += e.Detail
	case e.Err != nil:
		msg += e.Err.Error()
	default:
		msg += "request failed"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status: %d)", e.Status)
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

// Message returns the detail reported by the service or fallback when the
// service did not supply one.
func (e *ServiceError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// UserMessage renders err for the status banner: validation messages verbatim,
// service details verbatim, anything else as fallback.
func UserMessage(err error, fallback string) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var sErr *ServiceError
	if errors.As(err, &sErr) {
		return sErr.Message(fallback)
	}
	return fallback
}

var validationMessages = map[error]string{
	ErrEmptyPrompt:          "Please enter a prompt first",
	ErrEmptyOptimizedPrompt: "Please provide an optimized prompt",
	ErrNoSession:            "No active session. Generate code first",
	ErrInvalidFileIndex:     "Unknown file",
}

// NewValidationError wraps one of the input sentinels with its user message.
func NewValidationError(op string, err error) *ValidationError {
	return &ValidationError{Op: op, Err: err, Message: validationMessages[err]}
}

func validation(op string, err error) error {
	return NewValidationError(op, err)
}
