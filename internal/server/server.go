// Package server exposes the chat endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/llm"
)

const shutdownTimeout = 5 * time.Second

// Server serves the chat API
type Server struct {
	cfg          config.LLMConfig
	newGenerator func(context.Context, config.LLMConfig) (llm.Generator, error)
	echo         *echo.Echo

	mu  sync.Mutex
	gen llm.Generator
}

// Option configures a Server
type Option func(*Server)

// WithGenerator uses gen instead of creating one from the configuration
func WithGenerator(gen llm.Generator) Option {
	return func(s *Server) { s.gen = gen }
}

// New creates a server for the configured generation provider.
// The provider is created on first use, so a missing credential fails
// requests instead of startup.
func New(cfg config.LLMConfig, opts ...Option) *Server {
	s := &Server{
		cfg:          cfg,
		newGenerator: llm.New,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("Request")
			return nil
		},
	}))

	NewHandlers(s).Register(e)
	s.echo = e
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("provider", s.cfg.Provider).Msg("Server listening")
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// generator returns the generation provider, creating it on first use
func (s *Server) generator(ctx context.Context) (llm.Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != nil {
		return s.gen, nil
	}
	gen, err := s.newGenerator(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("provider", gen.Name()).Msg("Generator created")
	s.gen = gen
	return gen, nil
}
