package server

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/daikw/sportsbot/internal/persona"
	"github.com/daikw/sportsbot/internal/stream"
)

// User facing error messages
const (
	MsgMessageRequired = "Bericht is vereist"
	MsgMessageInvalid  = "Bericht moet een string zijn van maximaal 100.000 karakters"
	MsgInvalidBody     = "Ongeldig verzoek"
	MsgProcessing      = "Er is een fout opgetreden bij het verwerken van je bericht"
)

// Handlers implements the HTTP endpoints
type Handlers struct {
	srv *Server
}

// NewHandlers creates the handlers for srv
func NewHandlers(srv *Server) Handlers {
	return Handlers{srv: srv}
}

// Register adds the routes to e
func (h Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/api/personas", h.personas)
	e.POST(stream.CompletePath, h.chat)
	e.POST(stream.StreamPath, h.chatStream)
}

// chatRequest mirrors stream.Request, keeping message untyped so that
// missing and mistyped values can be told apart
type chatRequest struct {
	Message any    `json:"message"`
	AIModel string `json:"aiModel"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// requestError is a rejected request, reported before any generation
type requestError struct {
	status int
	body   errorResponse
}

// validate checks the credential and the request body and returns the
// message and the resolved model
func (h Handlers) validate(c echo.Context) (string, string, *requestError) {
	if _, err := h.srv.cfg.Credential(); err != nil {
		log.Error().Err(err).Msg("Generation provider not configured")
		return "", "", &requestError{http.StatusInternalServerError, errorResponse{Error: err.Error()}}
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return "", "", &requestError{http.StatusBadRequest, errorResponse{Error: MsgInvalidBody}}
	}
	if isEmptyValue(req.Message) {
		return "", "", &requestError{http.StatusBadRequest, errorResponse{Error: MsgMessageRequired}}
	}
	message, ok := req.Message.(string)
	if !ok || utf8.RuneCountInString(message) > stream.MaxPromptLength {
		return "", "", &requestError{http.StatusBadRequest, errorResponse{Error: MsgMessageInvalid}}
	}

	return message, h.srv.cfg.ResolveModel(req.AIModel), nil
}

func (h Handlers) chat(c echo.Context) error {
	message, model, rerr := h.validate(c)
	if rerr != nil {
		return c.JSON(rerr.status, rerr.body)
	}

	ctx := c.Request().Context()
	gen, err := h.srv.generator(context.WithoutCancel(ctx))
	if err != nil {
		return processingError(c, err)
	}

	reply, err := gen.Generate(ctx, model, message)
	if err != nil {
		return processingError(c, err)
	}

	return c.JSON(http.StatusOK, stream.Response{Response: reply, Success: true})
}

func (h Handlers) chatStream(c echo.Context) error {
	message, model, rerr := h.validate(c)
	if rerr != nil {
		return c.JSON(rerr.status, rerr.body)
	}

	ctx := c.Request().Context()
	gen, err := h.srv.generator(context.WithoutCancel(ctx))
	if err != nil {
		return processingError(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	tokens := 0
	err = gen.Stream(ctx, model, message, func(token string) error {
		if err := stream.WriteEvent(res, stream.TokenEvent(token)); err != nil {
			return err
		}
		res.Flush()
		tokens++
		return nil
	})

	switch {
	case err == nil:
		log.Debug().Str("model", model).Int("tokens", tokens).Msg("Stream completed")
		return h.writeFinal(c, stream.DoneEvent())
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		log.Debug().Int("tokens", tokens).Msg("Client went away during stream")
		return nil
	default:
		log.Error().Err(err).Int("tokens", tokens).Msg("Stream failed")
		return h.writeFinal(c, stream.ErrorEvent(err.Error()))
	}
}

func (h Handlers) writeFinal(c echo.Context, ev stream.Event) error {
	res := c.Response()
	if err := stream.WriteEvent(res, ev); err != nil {
		log.Debug().Err(err).Msg("Failed to write final event")
		return nil
	}
	res.Flush()
	return nil
}

func (h Handlers) personas(c echo.Context) error {
	return c.JSON(http.StatusOK, persona.All())
}

func processingError(c echo.Context, err error) error {
	log.Error().Err(err).Msg("Failed to generate reply")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: MsgProcessing, Details: err.Error()})
}

// isEmptyValue reports whether a decoded JSON value counts as absent:
// null, false, zero or the empty string
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}
