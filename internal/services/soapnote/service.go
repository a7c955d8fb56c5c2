// File: internal/services/soapnote/service.go
package soapnote

import (
	"context"
	"time"

	"github.com/iyunix/mediscribe/internal/domain"
)

// Service runs the note pipeline: prompt, one model call, sanitize, parse,
// normalize. It keeps no per-request state.
type Service struct {
	config    Config
	generator Generator
	logger    Logger
}

func NewService(config *Config, generator Generator, logger Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &NoteError{Type: ErrTypeConfig, Operation: "config", Message: "invalid service config", Cause: err}
	}
	if generator == nil {
		return nil, &NoteError{Type: ErrTypeConfig, Operation: "config", Message: "generator is required"}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		config:    *config,
		generator: generator,
		logger:    logger,
	}, nil
}

// GenerateNote builds a SOAP note for the narrative. Replies that are not
// clean JSON still produce a note; only the model call itself can fail.
func (s *Service) GenerateNote(ctx context.Context, narrative string) (*domain.SoapNote, error) {
	if err := domain.ValidateNarrative(narrative); err != nil {
		return nil, NewValidationError("generate_note", err)
	}

	start := time.Now()
	prompt := BuildPrompt(narrative)
	s.logger.Info("generating soap note", "narrative_length", len(narrative), "prompt_length", len(prompt))

	genCtx, cancel := context.WithTimeout(ctx, s.config.GenerationTimeout)
	defer cancel()

	raw, err := s.generator.GenerateContent(genCtx, prompt)
	if err != nil {
		s.logger.Error("soap note generation failed", "error", err)
		return nil, NewUpstreamError("generate_content", "language model call failed", err)
	}

	text := SanitizeReply(raw)
	note, structured := ParseNote(text)
	switch {
	case !structured:
		s.logger.Warn("model reply was not structured, returning raw-text note", "reply_length", len(text))
	case note.IsDegraded():
		s.logger.Info("model declined narrative", "reply_length", len(text))
	}

	normalized := NormalizeNote(note)
	s.logger.Info("soap note generated",
		"structured", structured,
		"degraded", normalized.IsDegraded(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &normalized, nil
}
