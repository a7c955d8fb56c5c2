// File: internal/services/soapnote/errors.go
package soapnote

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeUpstream   ErrorType = "UPSTREAM"
)

// NoteError wraps failures that abort note generation. Cause is kept so
// callers can match domain and gemini sentinels with errors.Is.
type NoteError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *NoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("SoapNote %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("SoapNote %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *NoteError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation string, cause error) *NoteError {
	return &NoteError{Type: ErrTypeValidation, Operation: operation, Message: "invalid narrative", Cause: cause}
}

func NewUpstreamError(operation, msg string, cause error) *NoteError {
	return &NoteError{Type: ErrTypeUpstream, Operation: operation, Message: msg, Cause: cause}
}
