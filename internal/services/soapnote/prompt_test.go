package soapnote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptIsDeterministic(t *testing.T) {
	narrative := "I have a headache and mild fever for two days"
	first := BuildPrompt(narrative)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildPrompt(narrative))
	}
}

func TestBuildPromptContents(t *testing.T) {
	narrative := "I have a headache and mild fever for two days"
	prompt := BuildPrompt(narrative)

	assert.Contains(t, prompt, "You are a clinical assistant helping to create SOAP notes.")
	assert.Contains(t, prompt, RefusalMessage)
	assert.Contains(t, prompt, "Patient Narrative:\n"+narrative+"\n")
	assert.Contains(t, prompt, `"htmlFormat": "<div>...</div>"`)
	assert.Contains(t, prompt, `"rawResponse": ""`)
	for _, key := range []string{"subjective", "objective", "assessment", "plan", "investigations", "medications", "lifestyleAdvice", "referrals", "monitoring"} {
		assert.Contains(t, prompt, `"`+key+`"`)
	}
	assert.True(t, strings.HasSuffix(prompt, "}"))
}

func TestBuildPromptKeepsFormatVerbs(t *testing.T) {
	prompt := BuildPrompt("pain rated 80% of the time %s %d")
	assert.Contains(t, prompt, "pain rated 80% of the time %s %d")
}

func TestNormalizeNarrative(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims", in: "  cough  \n", want: "cough"},
		{name: "crlf", in: "line one\r\nline two\rline three", want: "line one\nline two\nline three"},
		{name: "nul", in: "fe\x00ver", want: "fever"},
		{name: "nfc", in: "cafe\u0301", want: "caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNarrative(tt.in))
		})
	}
}

func TestBuildPromptSameForEquivalentNarratives(t *testing.T) {
	assert.Equal(t, BuildPrompt("cafe\u0301 headache\r\n"), BuildPrompt("caf\u00e9 headache"))
}
