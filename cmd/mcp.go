package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/conversation"
	"github.com/daikw/sportsbot/internal/llm"
	"github.com/daikw/sportsbot/internal/persona"
)

// interviews keeps one in-process conversation per persona for MCP clients
type interviews struct {
	cfg      config.LLMConfig
	fallback persona.ID

	mu       sync.Mutex
	gen      llm.Generator
	sessions map[persona.ID]*conversation.Session
}

func newInterviews(cfg config.LLMConfig, fallback persona.ID) *interviews {
	return &interviews{
		cfg:      cfg,
		fallback: fallback,
		sessions: make(map[persona.ID]*conversation.Session),
	}
}

// session returns the conversation with id, starting one if needed
func (iv *interviews) session(ctx context.Context, id persona.ID) (*conversation.Session, error) {
	if id == "" {
		id = iv.fallback
	}
	p, err := persona.Lookup(id)
	if err != nil {
		return nil, err
	}

	iv.mu.Lock()
	defer iv.mu.Unlock()

	if s, ok := iv.sessions[id]; ok {
		return s, nil
	}
	if iv.gen == nil {
		gen, err := llm.New(ctx, iv.cfg)
		if err != nil {
			return nil, err
		}
		iv.gen = gen
	}

	s := conversation.NewSession(conversation.NewState(p), llm.NewStreamer(iv.gen, iv.cfg.ResolveModel("")))
	iv.sessions[id] = s
	log.Debug().Str("persona", string(id)).Msg("Started MCP interview")
	return s, nil
}

func (iv *interviews) handleListPersonas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(persona.All(), "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (iv *interviews) handleInterview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s, err := iv.session(ctx, persona.ID(req.GetString("persona", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg, err := s.Send(ctx, message, nil)
	if err != nil {
		if msg.Content != "" {
			return mcp.NewToolResultError(msg.Content), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(msg.Content), nil
}

func (iv *interviews) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := iv.session(ctx, persona.ID(req.GetString("persona", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.Reset()

	messages := s.State().Messages()
	if len(messages) == 0 {
		return mcp.NewToolResultText("Interview reset"), nil
	}
	return mcp.NewToolResultText(messages[0].Content), nil
}

func newMCPServer(iv *interviews) *server.MCPServer {
	s := server.NewMCPServer("sportsbot", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("list_personas",
		mcp.WithDescription("List the marketing managers that can be interviewed"),
	), iv.handleListPersonas)

	s.AddTool(mcp.NewTool("interview",
		mcp.WithDescription("Ask the marketing manager a question. The conversation continues across calls."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The question or remark of the student"),
		),
		mcp.WithString("persona",
			mcp.Description("Persona ID (default: the configured persona)"),
		),
	), iv.handleInterview)

	s.AddTool(mcp.NewTool("reset_interview",
		mcp.WithDescription("Start a new interview and return the welcome message"),
		mcp.WithString("persona",
			mcp.Description("Persona ID (default: the configured persona)"),
		),
	), iv.handleReset)

	return s
}

func handleMCP(ctx context.Context, c *cli.Command) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}

	s := newMCPServer(newInterviews(a.cfg.LLM, a.persona.ID))
	log.Debug().Str("persona", string(a.persona.ID)).Msg("Serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}
