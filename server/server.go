// Package server assembles the HTTP server from its parts.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/peachme/peachme/internal/profile"
	"github.com/peachme/peachme/plugin/ai"
	pipelineerr "github.com/peachme/peachme/server/internal/errors"
	apiv1 "github.com/peachme/peachme/server/router/api/v1"
	"github.com/peachme/peachme/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	logger     *slog.Logger
}

func NewServer(ctx context.Context, p *profile.Profile, st *store.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		Profile: p,
		Store:   st,
		logger:  logger,
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("request",
					"method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
			} else {
				logger.Info("request",
					"method", v.Method, "uri", v.URI, "status", v.Status)
			}
			return nil
		},
	}))

	var llmService ai.LLMService
	if p.IsAIEnabled() {
		config := ai.NewLLMConfigFromProfile(p)
		if err := config.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid LLM config")
		}
		service, err := ai.NewLLMService(config)
		if err != nil {
			return nil, errors.Wrap(err, "create LLM service")
		}
		llmService = service
	} else {
		logger.Warn("no AI API key configured, AI endpoints will report unavailable")
		llmService = unavailableLLM{}
	}

	apiService := apiv1.NewAPIV1Service(p, st, llmService, logger)
	apiService.RegisterRoutes(echoServer)

	s.echoServer = echoServer
	if err := st.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "migrate database")
	}
	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server started", "address", address, "mode", s.Profile.Mode, "driver", s.Profile.Driver)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		s.logger.Error("failed to close store", "error", err)
	}
	s.logger.Info("server shut down")
}

// unavailableLLM stands in when no API key is configured so the rest of
// the API keeps serving.
type unavailableLLM struct{}

func (unavailableLLM) Chat(context.Context, []ai.Message) (string, error) {
	return "", pipelineerr.LLMUnavailable("AI is not configured")
}

func (unavailableLLM) ChatStream(context.Context, []ai.Message) (<-chan string, <-chan error) {
	contentChan := make(chan string)
	errChan := make(chan error, 1)
	errChan <- pipelineerr.LLMUnavailable("AI is not configured")
	close(contentChan)
	close(errChan)
	return contentChan, errChan
}
