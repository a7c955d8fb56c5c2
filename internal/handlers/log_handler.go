package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxClientLogMessage = 2048

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`             // e.g., "info", "error", "warn"
	Message string `json:"message"`           // The main log message
	Context any    `json:"context,omitempty"` // Optional extra data (e.g., stack trace)
}

// ClientLogHandler relays chat UI log events into the server log.
type ClientLogHandler struct {
	logger Logger
}

func NewClientLogHandler(logger Logger) *ClientLogHandler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &ClientLogHandler{logger: logger}
}

// LogFrontendEvent handles incoming log requests from the frontend.
func (h *ClientLogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&payload); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg := truncate(payload.Message, maxClientLogMessage)
	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error("CLIENT_LOG", "message", msg, "context", payload.Context)
	case "warn", "warning":
		h.logger.Warn("CLIENT_LOG", "message", msg, "context", payload.Context)
	case "debug":
		h.logger.Debug("CLIENT_LOG", "message", msg, "context", payload.Context)
	default:
		h.logger.Info("CLIENT_LOG", "message", msg, "context", payload.Context)
	}

	w.WriteHeader(http.StatusNoContent)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back up to a rune boundary.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
