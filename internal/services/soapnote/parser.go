// File: internal/services/soapnote/parser.go
package soapnote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/iyunix/mediscribe/internal/domain"
)

// ParseNote turns a sanitized model reply into a SoapNote. The boolean is
// false when the reply was not structured JSON and the note is a raw-text
// wrapper around it. ParseNote never fails.
func ParseNote(text string) (domain.SoapNote, bool) {
	trimmed := strings.TrimSpace(text)
	if !looksStructured(trimmed) {
		return FallbackNote(text), false
	}

	note, err := decodeNote([]byte(trimmed))
	if err != nil {
		return FallbackNote(text), false
	}

	if note.HtmlFormat == "" {
		switch {
		case note.RawResponse != "":
			note.HtmlFormat = wrapRawHTML(note.RawResponse)
		case note.HasClinicalContent():
			note.HtmlFormat = RenderHTML(note)
		}
	}
	return note, true
}

// FallbackNote wraps text that could not be parsed into a note with only
// RawResponse and an escaped HTML paragraph.
func FallbackNote(text string) domain.SoapNote {
	return domain.SoapNote{
		Plan: domain.PlanDetail{
			Investigations:  []string{},
			Medications:     []string{},
			LifestyleAdvice: []string{},
			Referrals:       []string{},
			Monitoring:      []string{},
		},
		HtmlFormat:  wrapRawHTML(text),
		RawResponse: text,
	}
}

func wrapRawHTML(text string) string {
	return "<div><p>" + html.EscapeString(text) + "</p></div>"
}

func looksStructured(trimmed string) bool {
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// decodeNote validates the reply against the note schema. Keys are matched
// once here, ignoring case and '_' or '-' separators.
func decodeNote(data []byte) (domain.SoapNote, error) {
	var note domain.SoapNote

	fields, err := decodeObject(data)
	if err != nil {
		return note, err
	}

	targets := []struct {
		key string
		dst *string
	}{
		{"subjective", &note.Subjective},
		{"objective", &note.Objective},
		{"assessment", &note.Assessment},
		{"htmlformat", &note.HtmlFormat},
		{"rawresponse", &note.RawResponse},
	}
	for _, t := range targets {
		if *t.dst, err = decodeString(fields, t.key); err != nil {
			return note, err
		}
	}

	if note.Plan, err = decodePlan(fields["plan"]); err != nil {
		return note, err
	}
	return note, nil
}

func decodePlan(raw json.RawMessage) (domain.PlanDetail, error) {
	var plan domain.PlanDetail
	if isNull(raw) {
		return plan, nil
	}

	fields, err := decodeObject(raw)
	if err != nil {
		return plan, fmt.Errorf("plan: %w", err)
	}

	targets := []struct {
		key string
		dst *[]string
	}{
		{"investigations", &plan.Investigations},
		{"medications", &plan.Medications},
		{"lifestyleadvice", &plan.LifestyleAdvice},
		{"referrals", &plan.Referrals},
		{"monitoring", &plan.Monitoring},
	}
	for _, t := range targets {
		if *t.dst, err = decodeList(fields, t.key); err != nil {
			return plan, fmt.Errorf("plan: %w", err)
		}
	}
	return plan, nil
}

// decodeObject decodes a JSON object into folded keys. When two keys fold to
// the same name the lexically last source key wins, so the result does not
// depend on map order.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected JSON object")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]json.RawMessage, len(raw))
	for _, k := range keys {
		folded[foldKey(k)] = raw[k]
	}
	return folded, nil
}

func decodeString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q: %w", key, err)
	}
	return s, nil
}

func decodeList(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return items, nil
}

func foldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer("_", "", "-", "").Replace(k)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
