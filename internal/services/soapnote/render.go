// File: internal/services/soapnote/render.go
package soapnote

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/iyunix/mediscribe/internal/domain"
)

// goldmark drops raw HTML unless WithUnsafe is set, so model text cannot
// inject markup through this path.
var markdown = goldmark.New()

type planSection struct {
	title string
	items []string
}

// RenderHTML builds the chat UI fragment for a structured note whose reply
// did not include htmlFormat.
func RenderHTML(note domain.SoapNote) string {
	source := noteMarkdown(note)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return wrapRawHTML(source)
	}
	return "<div>" + strings.TrimSpace(buf.String()) + "</div>"
}

func noteMarkdown(note domain.SoapNote) string {
	var b strings.Builder
	b.WriteString("## SOAP\n\n")
	writeTextSection(&b, "Subjective", note.Subjective)
	writeTextSection(&b, "Objective", note.Objective)
	writeTextSection(&b, "Assessment", note.Assessment)

	sections := []planSection{
		{"Investigations", note.Plan.Investigations},
		{"Medications", note.Plan.Medications},
		{"Lifestyle Advice", note.Plan.LifestyleAdvice},
		{"Referrals", note.Plan.Referrals},
		{"Monitoring", note.Plan.Monitoring},
	}

	b.WriteString("### Plan\n\n")
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		b.WriteString("#### " + s.title + "\n\n")
		for _, item := range s.items {
			b.WriteString("- " + singleLine(item) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeTextSection(b *strings.Builder, title, body string) {
	b.WriteString("### " + title + "\n\n")
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString(body + "\n\n")
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
