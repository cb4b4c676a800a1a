package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/llm"
	"github.com/daikw/sportsbot/internal/persona"
	"github.com/daikw/sportsbot/internal/stream"
)

// scriptedGenerator replays fixed tokens and records the requested models
type scriptedGenerator struct {
	mu     sync.Mutex
	models []string
	tokens []string
	err    error
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(_ context.Context, model, _ string) (string, error) {
	g.mu.Lock()
	g.models = append(g.models, model)
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return strings.Join(g.tokens, ""), nil
}

func (g *scriptedGenerator) Stream(_ context.Context, model, _ string, yield func(string) error) error {
	g.mu.Lock()
	g.models = append(g.models, model)
	g.mu.Unlock()
	for _, tok := range g.tokens {
		if err := yield(tok); err != nil {
			return err
		}
	}
	return g.err
}

// testConfig is a gemini configuration with a credential, so that requests
// pass the credential check and reach the injected generator
func testConfig() config.LLMConfig {
	cfg := config.Default().LLM
	cfg.APIKey = "test-key"
	return cfg
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChat_Success(t *testing.T) {
	gen := &scriptedGenerator{tokens: []string{"Hallo ", "student!"}}
	srv := New(testConfig(), WithGenerator(gen))

	rec := post(t, srv.Handler(), stream.CompletePath, `{"message":"Hoi","aiModel":"fast"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Hallo student!", body["response"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"gemini-2.5-flash-lite"}, gen.models)
}

func TestChat_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing message", `{}`, http.StatusBadRequest, MsgMessageRequired},
		{"empty message", `{"message":""}`, http.StatusBadRequest, MsgMessageRequired},
		{"null message", `{"message":null}`, http.StatusBadRequest, MsgMessageRequired},
		{"number message", `{"message":42}`, http.StatusBadRequest, MsgMessageInvalid},
		{"object message", `{"message":{"text":"hoi"}}`, http.StatusBadRequest, MsgMessageInvalid},
		{"too long", `{"message":"` + strings.Repeat("a", stream.MaxPromptLength+1) + `"}`, http.StatusBadRequest, MsgMessageInvalid},
		{"invalid json", `{"message":`, http.StatusBadRequest, MsgInvalidBody},
	}

	for _, tt := range tests {
		for _, path := range []string{stream.CompletePath, stream.StreamPath} {
			t.Run(tt.name+path, func(t *testing.T) {
				gen := &scriptedGenerator{tokens: []string{"nope"}}
				srv := New(testConfig(), WithGenerator(gen))

				rec := post(t, srv.Handler(), path, tt.body)
				assert.Equal(t, tt.status, rec.Code)
				assert.Equal(t, tt.message, decodeBody(t, rec)["error"])
				assert.Empty(t, gen.models, "generator must not be called")
			})
		}
	}
}

func TestChat_MaxLengthAccepted(t *testing.T) {
	gen := &scriptedGenerator{tokens: []string{"ok"}}
	srv := New(testConfig(), WithGenerator(gen))

	rec := post(t, srv.Handler(), stream.CompletePath, `{"message":"`+strings.Repeat("é", stream.MaxPromptLength)+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChat_MissingCredential(t *testing.T) {
	cfg := config.Default().LLM
	srv := New(cfg)

	rec := post(t, srv.Handler(), stream.CompletePath, `{"message":"Hoi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API configuratie ontbreekt. Voeg GEMINI_API_KEY toe aan environment variables.", decodeBody(t, rec)["error"])
}

func TestChat_ProviderFailure(t *testing.T) {
	srv := New(testConfig(), WithGenerator(&scriptedGenerator{err: errors.New("quota exceeded")}))

	rec := post(t, srv.Handler(), stream.CompletePath, `{"message":"Hoi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, MsgProcessing, body["error"])
	assert.Equal(t, "quota exceeded", body["details"])
}

func TestChatStream_Events(t *testing.T) {
	srv := New(testConfig(), WithGenerator(&scriptedGenerator{tokens: []string{"Hoi", " daar"}}))

	rec := post(t, srv.Handler(), stream.StreamPath, `{"message":"Hoi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: {\"token\":\"Hoi\"}\n\ndata: {\"token\":\" daar\"}\n\ndata: {\"done\":true}\n\n", rec.Body.String())
}

func TestChatStream_MidStreamError(t *testing.T) {
	srv := New(testConfig(), WithGenerator(&scriptedGenerator{tokens: []string{"Hoi"}, err: errors.New("overloaded")}))

	rec := post(t, srv.Handler(), stream.StreamPath, `{"message":"Hoi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data: {\"token\":\"Hoi\"}\n\ndata: {\"error\":true,\"message\":\"overloaded\"}\n\n", rec.Body.String())
}

func TestStreamClientAgainstServer(t *testing.T) {
	srv := New(testConfig(), WithGenerator(llm.NewMock()))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := stream.NewClient(ts.URL, stream.WithReadSize(7))
	var partials []string
	text, err := client.Stream(context.Background(), "\n\nStudent: Wie zijn jullie?", func(p string) {
		partials = append(partials, p)
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Wie zijn jullie?")
	require.NotEmpty(t, partials)
	assert.Equal(t, text, partials[len(partials)-1])

	reply, err := client.Complete(context.Background(), "\n\nStudent: Wie zijn jullie?")
	require.NoError(t, err)
	assert.Equal(t, text, reply)
}

func TestStreamClientAgainstServer_ProviderError(t *testing.T) {
	srv := New(testConfig(), WithGenerator(&llm.Mock{Err: errors.New("quota exceeded")}))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, err := stream.NewClient(ts.URL).Stream(context.Background(), "Hoi", func(string) {})
	var se *stream.StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "quota exceeded", se.Message)
}

func TestPersonasAndHealth(t *testing.T) {
	srv := New(testConfig())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/personas", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var personas []persona.Persona
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &personas))
	require.Len(t, personas, len(persona.IDs()))
	dita, err := persona.Lookup(persona.Dita)
	require.NoError(t, err)
	assert.Contains(t, personas, dita)
}

func TestServer_CreatesGeneratorOnce(t *testing.T) {
	calls := 0
	srv := New(testConfig())
	srv.newGenerator = func(context.Context, config.LLMConfig) (llm.Generator, error) {
		calls++
		return &scriptedGenerator{tokens: []string{"ok"}}, nil
	}

	for range 3 {
		rec := post(t, srv.Handler(), stream.CompletePath, `{"message":"Hoi"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, calls)
}
