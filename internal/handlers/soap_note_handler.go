// File: internal/handlers/soap_note_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iyunix/mediscribe/internal/domain"
	"github.com/iyunix/mediscribe/internal/middleware"
	"github.com/iyunix/mediscribe/internal/services/gemini"
)

const (
	msgEmptyNarrative   = "Patient narrative cannot be empty."
	msgNarrativeTooLong = "Patient narrative is too long."
	msgUpstreamFailed   = "The note could not be generated right now. Please try again later."
	msgInternal         = "Something went wrong on our end."
)

// NoteGenerator is satisfied by *soapnote.Service.
type NoteGenerator interface {
	GenerateNote(ctx context.Context, narrative string) (*domain.SoapNote, error)
}

// GenerateRequest is the body of POST /api/SoapNote/generateSOAPNote.
// encoding/json matches the key case-insensitively.
type GenerateRequest struct {
	PatientNarrative string `json:"patientNarrative"`
}

type SoapNoteHandler struct {
	service      NoteGenerator
	logger       Logger
	maxBodyBytes int64
}

func NewSoapNoteHandler(service NoteGenerator, logger Logger, maxBodyBytes int64) (*SoapNoteHandler, error) {
	if service == nil {
		return nil, errors.New("soap note service is required")
	}
	if maxBodyBytes <= 0 {
		return nil, errors.New("max body bytes must be positive")
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &SoapNoteHandler{
		service:      service,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}, nil
}

// GenerateSOAPNote turns the posted narrative into a note. Degraded notes
// are still a 200; only a failed model call maps to 502.
func (h *SoapNoteHandler) GenerateSOAPNote(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())

	var req GenerateRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("narrative body too large", "limit", h.maxBodyBytes, "request_id", requestID)
			writeError(w, msgNarrativeTooLong, http.StatusRequestEntityTooLarge)
			return
		}
		if !errors.Is(err, io.EOF) {
			h.logger.Debug("invalid request body", "error", err, "request_id", requestID)
		}
		writeError(w, msgEmptyNarrative, http.StatusBadRequest)
		return
	}

	note, err := h.service.GenerateNote(r.Context(), req.PatientNarrative)
	if err != nil {
		status, msg := statusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("soap note request failed", "status", status, "error", err, "request_id", requestID)
		}
		writeError(w, msg, status)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyNarrative):
		return http.StatusBadRequest, msgEmptyNarrative
	case errors.Is(err, gemini.ErrGenerationFailed), errors.Is(err, gemini.ErrUpstreamContractViolation):
		return http.StatusBadGateway, msgUpstreamFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
