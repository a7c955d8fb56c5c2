// File: internal/services/gemini/client.go
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	apiKeyHeader     = "X-Goog-Api-Key"
	maxResponseBytes = 8 << 20
	maxErrorExcerpt  = 512
)

// Client calls the Gemini generateContent endpoint. It holds no per-request
// state and is safe for concurrent use.
type Client struct {
	config     Config
	endpoint   string
	httpClient *http.Client
	logger     Logger
}

var _ Generator = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default client built from Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(config *Config, logger Logger, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, NewConfigError("config is nil", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError("invalid gemini config", err)
	}

	if logger == nil {
		logger = noopLogger{}
	}

	c := &Client{
		config:     *config,
		endpoint:   config.Endpoint(),
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

// Pointers distinguish a missing field from an empty one.
type generateResponse struct {
	Candidates *[]responseCandidate `json:"candidates"`
}

type responseCandidate struct {
	Content *responseContent `json:"content"`
}

type responseContent struct {
	Parts *[]responsePart `json:"parts"`
}

type responsePart struct {
	Text *string `json:"text"`
}

// GenerateContent sends a single prompt and returns the first candidate's text.
// The reply text itself is not interpreted.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", NewGenerationError(c.config.Model, 0, "failed to encode request", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewGenerationError(c.config.Model, 0, "failed to build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.config.APIKey)

	start := time.Now()
	c.logger.Debug("calling gemini", "model", c.config.Model, "prompt_length", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gemini request failed", "model", c.config.Model, "error", err)
		return "", NewGenerationError(c.config.Model, 0, "request failed", "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", NewGenerationError(c.config.Model, resp.StatusCode, "failed to read response", "", err)
	}

	c.logger.Info("gemini response received",
		"model", c.config.Model,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(raw),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := truncateUTF8(string(raw), maxErrorExcerpt)
		c.logger.Error("gemini returned error status", "status_code", resp.StatusCode, "body", excerpt)
		return "", NewGenerationError(c.config.Model, resp.StatusCode, "upstream returned non-success status", excerpt, nil)
	}

	return c.extractText(raw)
}

func (c *Client) extractText(raw []byte) (string, error) {
	var envelope generateResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", NewContractError(c.config.Model, "response is not valid JSON", err)
	}

	if envelope.Candidates == nil {
		return "", NewContractError(c.config.Model, "missing candidates", nil)
	}
	if len(*envelope.Candidates) == 0 {
		return "", NewContractError(c.config.Model, "empty candidates", nil)
	}

	first := (*envelope.Candidates)[0]
	if first.Content == nil {
		return "", NewContractError(c.config.Model, "missing candidate content", nil)
	}
	if first.Content.Parts == nil || len(*first.Content.Parts) == 0 {
		return "", NewContractError(c.config.Model, "missing content parts", nil)
	}

	text := (*first.Content.Parts)[0].Text
	if text == nil {
		return "", NewContractError(c.config.Model, "missing part text", nil)
	}
	return *text, nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...", s[:cut])
}
