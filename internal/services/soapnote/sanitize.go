// File: internal/services/soapnote/sanitize.go
package soapnote

import "strings"

const fence = "```"

// SanitizeReply trims the reply and removes markdown code fences around it,
// including a language hint such as "json" on the opening fence. Applying it
// twice gives the same result as applying it once.
func SanitizeReply(raw string) string {
	text := strings.TrimSpace(raw)
	for {
		next := stripFences(text)
		if next == text {
			return text
		}
		text = next
	}
}

func stripFences(text string) string {
	if strings.HasPrefix(text, fence) {
		text = text[len(fence):]
		text = text[languageTagLen(text):]
	}
	text = strings.TrimSuffix(text, fence)
	return strings.TrimSpace(text)
}

// languageTagLen returns the length of a language hint directly after an
// opening fence, including blanks that follow it. A hint only counts when,
// after those blanks, it ends the fence line or reaches the JSON payload,
// so "```Sorry, ..." keeps its text.
func languageTagLen(s string) int {
	n := 0
	for n < len(s) && isTagChar(s[n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	if n == len(s) {
		return n
	}
	switch s[n] {
	case '\n', '\r', '{', '[':
		return n
	}
	return 0
}

func isTagChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '+' || c == '.'
}
