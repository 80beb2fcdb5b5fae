package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peachme/peachme/server/internal/observability"
	"github.com/peachme/peachme/server/pitch"
)

// TranscriptionResponse is the reply to a transcription request. The
// transcript is the verbose Whisper result serialized as JSON.
type TranscriptionResponse struct {
	Transcript     string `json:"transcript"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// TranscribeVideo accepts a multipart upload under the `video` field and
// returns its transcript. With ?save_to_conversation=true the transcript
// is also stored as the opening message of a new conversation.
func (s *APIV1Service) TranscribeVideo(c echo.Context) error {
	reqCtx := observability.NewRequestContext(s.logger, "transcribe")

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return badRequest(c, "video file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return s.internalError(c, "transcribe", err)
	}
	defer src.Close()

	path, err := s.Transcriber.SaveUpload(src, fileHeader.Filename)
	if err != nil {
		return s.internalError(c, "transcribe", err)
	}

	ctx := c.Request().Context()
	transcript, err := s.Transcriber.Transcribe(ctx, path)
	if err != nil {
		return s.internalError(c, "transcribe", err)
	}
	reqCtx.Info("video transcribed",
		slog.Int64(observability.LogFieldMediaSize, fileHeader.Size),
		slog.Int(observability.LogFieldTranscriptLen, len(transcript)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	response := TranscriptionResponse{Transcript: transcript}
	if c.QueryParam("save_to_conversation") == "true" {
		conversation, err := s.Processor.Save(ctx, transcript, nil)
		if err != nil {
			return s.internalError(c, "save transcript", err)
		}
		response.ConversationID = conversation.UID
	}
	return c.JSON(http.StatusOK, response)
}

// AnalyzeTranscript scores a transcript and returns the structured
// evaluation together with the extracted pitch context.
func (s *APIV1Service) AnalyzeTranscript(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	result, err := s.Pipeline.Analyze(c.Request().Context(), request.Message)
	if err != nil {
		return s.internalError(c, "analyze", err)
	}
	return c.JSON(http.StatusOK, result)
}

// ExtractContext returns industry, verticals, problem and summary for a
// transcript.
func (s *APIV1Service) ExtractContext(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	extraction, err := s.Pipeline.ExtractContext(c.Request().Context(), request.Message)
	if err != nil {
		return s.internalError(c, "extract context", err)
	}
	return c.JSON(http.StatusOK, extraction)
}

// MarketResearch extracts context from a transcript and researches the
// market around it. The research step itself never fails; sources the
// model omitted are synthesized as search URLs.
func (s *APIV1Service) MarketResearch(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	ctx := c.Request().Context()
	extraction, err := s.Pipeline.ExtractContext(ctx, request.Message)
	if err != nil {
		return s.internalError(c, "market research", err)
	}
	return c.JSON(http.StatusOK, s.Pipeline.Research(ctx, extraction))
}

// PitchDeckContent runs the full deck generation pipeline for a
// transcript: context extraction, market research, evaluation, slide
// content and the JSX component.
func (s *APIV1Service) PitchDeckContent(c echo.Context) error {
	reqCtx := observability.NewRequestContext(s.logger, "pitch_deck")

	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	// Pipeline stage logs pick the request context up from ctx so the
	// whole deck generation correlates under one request_id.
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
	extraction, err := s.Pipeline.ExtractContext(ctx, request.Message)
	if err != nil {
		return s.internalError(c, "pitch deck", err)
	}

	research := s.Pipeline.Research(ctx, extraction)

	var evaluation *pitch.Evaluation
	if eval, err := s.Pipeline.Evaluate(ctx, request.Message); err != nil {
		reqCtx.Warn("evaluation failed, generating deck without feedback", slog.String("error", err.Error()))
	} else {
		evaluation = eval
	}

	result := s.Pipeline.PitchDeck(ctx, extraction, research, evaluation)
	reqCtx.Info("pitch deck generated",
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return c.JSON(http.StatusOK, result)
}
