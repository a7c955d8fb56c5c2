// File: internal/services/soapnote/types.go
package soapnote

import "context"

// Logger defines the logging interface used across the note pipeline
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Generator sends a prompt to the language model and returns its raw reply.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}
