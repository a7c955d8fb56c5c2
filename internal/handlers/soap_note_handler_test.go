package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/mediscribe/internal/domain"
	"github.com/iyunix/mediscribe/internal/services/gemini"
	"github.com/iyunix/mediscribe/internal/services/soapnote"
)

const route = "/api/SoapNote/generateSOAPNote"

type fakeNoteService struct {
	note      *domain.SoapNote
	err       error
	narrative string
	calls     int
}

func (f *fakeNoteService) GenerateNote(ctx context.Context, narrative string) (*domain.SoapNote, error) {
	f.calls++
	f.narrative = narrative
	if f.err != nil {
		return nil, f.err
	}
	if err := domain.ValidateNarrative(narrative); err != nil {
		return nil, err
	}
	return f.note, nil
}

func newTestRouter(t *testing.T, svc NoteGenerator, maxBytes int64) *mux.Router {
	t.Helper()
	h, err := NewSoapNoteHandler(svc, nil, maxBytes)
	require.NoError(t, err)

	r := mux.NewRouter()
	r.HandleFunc(route, h.GenerateSOAPNote).Methods(http.MethodPost)
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, route, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleNote() *domain.SoapNote {
	return &domain.SoapNote{
		Subjective: "Headache for two days.",
		Objective:  "No vitals provided.",
		Assessment: "Likely tension headache.",
		Plan: domain.PlanDetail{
			Investigations:  []string{},
			Medications:     []string{"Paracetamol"},
			LifestyleAdvice: []string{"Rest"},
			Referrals:       []string{},
			Monitoring:      []string{},
		},
		HtmlFormat: "<div><h2>SOAP</h2></div>",
	}
}

func TestGenerateSOAPNoteSuccess(t *testing.T) {
	svc := &fakeNoteService{note: sampleNote()}
	rec := post(newTestRouter(t, svc, 1024), `{"patientNarrative":"I have a headache"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "I have a headache", svc.narrative)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Headache for two days.", body["subjective"])
	assert.Equal(t, "<div><h2>SOAP</h2></div>", body["htmlFormat"])
	assert.NotContains(t, body, "rawResponse")

	plan := body["plan"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, plan["investigations"])
	assert.Equal(t, []interface{}{"Paracetamol"}, plan["medications"])
}

func TestGenerateSOAPNoteKeyIsCaseInsensitive(t *testing.T) {
	svc := &fakeNoteService{note: sampleNote()}
	rec := post(newTestRouter(t, svc, 1024), `{"PatientNarrative":"I have a headache"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I have a headache", svc.narrative)
}

func TestGenerateSOAPNoteBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "blank narrative", body: `{"patientNarrative":"   "}`},
		{name: "missing field", body: `{}`},
		{name: "null body", body: `null`},
		{name: "empty body", body: ``},
		{name: "malformed json", body: `{"patientNarrative":`},
		{name: "wrong type", body: `{"patientNarrative":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestRouter(t, &fakeNoteService{note: sampleNote()}, 1024), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Patient narrative cannot be empty."}`, rec.Body.String())
		})
	}
}

func TestGenerateSOAPNoteBodyTooLarge(t *testing.T) {
	svc := &fakeNoteService{note: sampleNote()}
	body := fmt.Sprintf(`{"patientNarrative":%q}`, strings.Repeat("a", 200))
	rec := post(newTestRouter(t, svc, 64), body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestGenerateSOAPNoteErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "empty narrative", err: soapnote.NewValidationError("generate_note", domain.ErrEmptyNarrative), want: http.StatusBadRequest},
		{name: "generation failed", err: soapnote.NewUpstreamError("generate_content", "failed",
			gemini.NewGenerationError("m", 500, "status 500", "upstream secret body", nil)), want: http.StatusBadGateway},
		{name: "contract violation", err: soapnote.NewUpstreamError("generate_content", "failed",
			gemini.NewContractError("m", "missing candidates", nil)), want: http.StatusBadGateway},
		{name: "other", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestRouter(t, &fakeNoteService{err: tt.err}, 1024), `{"patientNarrative":"headache"}`)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, rec.Body.String(), "upstream secret body")
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}

func TestGenerateSOAPNoteMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, &fakeNoteService{note: sampleNote()}, 1024)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, route, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &fakeNoteService{}, 1024)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestNewSoapNoteHandlerValidation(t *testing.T) {
	_, err := NewSoapNoteHandler(nil, nil, 1024)
	assert.Error(t, err)
	_, err = NewSoapNoteHandler(&fakeNoteService{}, nil, 0)
	assert.Error(t, err)
}

// End to end through the real pipeline with a mocked model endpoint.
func TestGenerateSOAPNoteThroughPipeline(t *testing.T) {
	tests := []struct {
		name     string
		upstream http.HandlerFunc
		want     int
		check    func(t *testing.T, body map[string]interface{})
	}{
		{
			name:     "structured",
			upstream: geminiReply("```json\n" + `{"subjective":"s","objective":"o","assessment":"a","plan":{"referrals":["GP","ENT"]},"htmlFormat":"<div>n</div>"}` + "\n```"),
			want:     http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				plan := body["plan"].(map[string]interface{})
				assert.Equal(t, []interface{}{"GP"}, plan["referrals"])
				assert.Equal(t, []interface{}{}, plan["monitoring"])
				assert.Equal(t, "<div>n</div>", body["htmlFormat"])
			},
		},
		{
			name:     "plain text",
			upstream: geminiReply("Sorry, I can only help with healthcare."),
			want:     http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Sorry, I can only help with healthcare.", body["rawResponse"])
				assert.Equal(t, "", body["subjective"])
			},
		},
		{
			name: "upstream 500",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusInternalServerError)
			},
			want: http.StatusBadGateway,
		},
		{
			name: "missing candidates",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{}`))
			},
			want: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.upstream)
			defer upstream.Close()

			cfg := gemini.DefaultConfig()
			cfg.APIKey = "k"
			cfg.BaseURL = upstream.URL
			cfg.Timeout = 5 * time.Second
			client, err := gemini.NewClient(cfg, nil, gemini.WithHTTPClient(upstream.Client()))
			require.NoError(t, err)
			svc, err := soapnote.NewService(nil, client, nil)
			require.NoError(t, err)

			rec := post(newTestRouter(t, svc, 4096), `{"patientNarrative":"sore throat and fever"}`)
			require.Equal(t, tt.want, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotContains(t, rec.Body.String(), "quota exceeded")
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func geminiReply(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
			}},
		})
	}
}
