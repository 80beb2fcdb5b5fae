// Package v1 exposes the HTTP JSON API.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/peachme/peachme/internal/profile"
	"github.com/peachme/peachme/plugin/ai"
	"github.com/peachme/peachme/server/chat"
	apperrors "github.com/peachme/peachme/server/internal/errors"
	"github.com/peachme/peachme/server/internal/observability"
	"github.com/peachme/peachme/server/middleware"
	"github.com/peachme/peachme/server/pitch"
	"github.com/peachme/peachme/server/transcriber"
	"github.com/peachme/peachme/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	Processor   *chat.Processor
	Pipeline    *pitch.Pipeline
	Transcriber *transcriber.Transcriber

	logger      *slog.Logger
	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(p *profile.Profile, st *store.Store, llm ai.LLMService, logger *slog.Logger) *APIV1Service {
	return &APIV1Service{
		Profile:   p,
		Store:     st,
		Processor: chat.NewProcessor(st, llm, logger),
		Pipeline:  pitch.NewPipeline(llm, logger),
		Transcriber: transcriber.New(transcriber.Config{
			APIKey:     p.AIAPIKey,
			BaseURL:    p.AIBaseURL,
			Model:      p.AIWhisperModel,
			FFmpegPath: p.FFmpegPath,
			MediaDir:   p.MediaDir,
		}, logger),
		logger:      logger,
		rateLimiter: middleware.NewRateLimiter(time.Second/10, 20),
	}
}

// RegisterRoutes wires all endpoints onto the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     s.Profile.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	e.GET("/", s.Root)
	e.GET("/healthz", s.Healthz)

	api := e.Group("/api", s.rateLimiter.Middleware())
	api.POST("/chat", s.Chat)
	api.POST("/chat/stream", s.ChatStream)
	api.POST("/chat/structured", s.ChatStructured)
	api.GET("/conversations/:id", s.GetConversationMessages)
	api.GET("/stats", s.Stats)

	video := api.Group("/video")
	video.POST("/transcribe", s.TranscribeVideo)
	video.POST("/analyze", s.AnalyzeTranscript)
	video.POST("/extract-context", s.ExtractContext)
	video.POST("/market-research", s.MarketResearch)
	video.POST("/pitch-deck-content", s.PitchDeckContent)
}

// internalError logs the failure and returns the uniform error envelope.
func (s *APIV1Service) internalError(c echo.Context, operation string, err error) error {
	code := apperrors.GetCodeFromError(err, apperrors.ErrCodeAgentExecutionFailed)
	s.logger.Error("request failed",
		"operation", operation,
		observability.LogFieldErrorCode, string(code),
		"error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "An error occurred: " + err.Error(),
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// Root reports service identity.
func (s *APIV1Service) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Welcome to PeachMe API",
		"version": s.Profile.Version,
	})
}

// Healthz reports liveness.
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// StatsResponse is the metrics snapshot plus the derived success rate.
type StatsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64 `json:"success_rate"`
}

// Stats returns pipeline counters.
func (s *APIV1Service) Stats(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()
	return c.JSON(http.StatusOK, StatsResponse{
		MetricsSnapshot: snapshot,
		SuccessRate:     snapshot.SuccessRate(),
	})
}
