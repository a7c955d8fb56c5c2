// File: internal/services/gemini/errors.go
package gemini

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig            ErrorType = "CONFIG"
	ErrTypeGenerationFailed  ErrorType = "GENERATION_FAILED"
	ErrTypeContractViolation ErrorType = "CONTRACT_VIOLATION"
)

// Sentinels for errors.Is matching against *APIError.
var (
	ErrGenerationFailed          = errors.New("generation failed")
	ErrUpstreamContractViolation = errors.New("upstream contract violation")
)

// APIError describes a failed generateContent call. Body holds a capped
// excerpt of the upstream response for logs and is never sent to clients.
type APIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Body      string
	Cause     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("Gemini %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, msg, e.Cause)
	}
	return fmt.Sprintf("Gemini %s error in %s: %s", e.Type, e.Operation, msg)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrGenerationFailed:
		return e.Type == ErrTypeGenerationFailed
	case ErrUpstreamContractViolation:
		return e.Type == ErrTypeContractViolation
	}
	return false
}

func NewConfigError(msg string, cause error) *APIError {
	return &APIError{Type: ErrTypeConfig, Operation: "config", Message: msg, Cause: cause}
}

func NewGenerationError(model string, code int, msg, body string, cause error) *APIError {
	return &APIError{
		Type:      ErrTypeGenerationFailed,
		Code:      code,
		Message:   msg,
		Model:     model,
		Operation: "generate_content",
		Body:      body,
		Cause:     cause,
	}
}

func NewContractError(model, msg string, cause error) *APIError {
	return &APIError{
		Type:      ErrTypeContractViolation,
		Message:   msg,
		Model:     model,
		Operation: "decode_response",
		Cause:     cause,
	}
}
