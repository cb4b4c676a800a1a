package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/persona"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func newMockInterviews() *interviews {
	return newInterviews(config.LLMConfig{Provider: config.ProviderMock}, persona.Default)
}

func TestInterviews_Interview(t *testing.T) {
	iv := newMockInterviews()
	ctx := context.Background()

	res, err := iv.handleInterview(ctx, callRequest("interview", map[string]any{"message": "Wie is jullie doelgroep?"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Wie is jullie doelgroep?")

	_, err = iv.handleInterview(ctx, callRequest("interview", map[string]any{"message": "En online?"}))
	require.NoError(t, err)

	s, err := iv.session(ctx, "")
	require.NoError(t, err)
	// welcome, then two questions with their replies
	assert.Len(t, s.State().Messages(), 5)
}

func TestInterviews_Errors(t *testing.T) {
	iv := newMockInterviews()
	ctx := context.Background()

	res, err := iv.handleInterview(ctx, callRequest("interview", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = iv.handleInterview(ctx, callRequest("interview", map[string]any{"message": "Hoi", "persona": "nike"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestInterviews_Reset(t *testing.T) {
	iv := newMockInterviews()
	ctx := context.Background()

	_, err := iv.handleInterview(ctx, callRequest("interview", map[string]any{"message": "Hoi"}))
	require.NoError(t, err)

	res, err := iv.handleReset(ctx, callRequest("reset_interview", nil))
	require.NoError(t, err)

	p, err := persona.Lookup(persona.Default)
	require.NoError(t, err)
	assert.Equal(t, p.Welcome(), resultText(t, res))

	s, err := iv.session(ctx, persona.Default)
	require.NoError(t, err)
	assert.Len(t, s.State().Messages(), 1)
}

func TestInterviews_ListPersonas(t *testing.T) {
	res, err := newMockInterviews().handleListPersonas(context.Background(), callRequest("list_personas", nil))
	require.NoError(t, err)

	var personas []persona.Persona
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &personas))
	assert.Len(t, personas, len(persona.IDs()))
}

func TestPersonaVoice(t *testing.T) {
	assert.Equal(t, "", personaVoice(nil).Provider)
	assert.Equal(t, "", personaVoice(&persona.Config{Name: persona.Dita}).Voice)

	in := personaVoice(&persona.Config{
		Name:  persona.Dita,
		Voice: &persona.VoiceConfig{Provider: "gcp", Voice: "nl-NL-Wavenet-A", Rate: 1.5},
	})
	assert.Equal(t, "gcp", in.Provider)
	assert.Equal(t, "nl-NL-Wavenet-A", in.Voice)
	assert.Equal(t, 1.5, in.Rate)
}
