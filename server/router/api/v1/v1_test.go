package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/peachme/peachme/internal/profile"
	"github.com/peachme/peachme/plugin/ai"
	"github.com/peachme/peachme/server/chat"
	"github.com/peachme/peachme/server/internal/observability"
	"github.com/peachme/peachme/server/middleware"
	"github.com/peachme/peachme/server/pitch"
	teststore "github.com/peachme/peachme/store/test"
)

// scriptedLLM replays responses in order, one per Chat call.
type scriptedLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedLLM) Chat(_ context.Context, _ []ai.Message) (string, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

func (s *scriptedLLM) ChatStream(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	contentChan := make(chan string, 8)
	errChan := make(chan error, 1)
	response, err := s.Chat(ctx, messages)
	if err != nil {
		errChan <- err
	} else {
		for _, word := range strings.SplitAfter(response, " ") {
			contentChan <- word
		}
	}
	close(contentChan)
	close(errChan)
	return contentChan, errChan
}

func newTestService(t *testing.T, llm ai.LLMService) (*APIV1Service, *echo.Echo) {
	t.Helper()
	st := teststore.NewTestingStore(context.Background(), t)
	logger := slog.Default()
	svc := &APIV1Service{
		Profile: &profile.Profile{
			Mode:        "dev",
			Version:     "0.0.0-test",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Store:       st,
		Processor:   chat.NewProcessor(st, llm, logger),
		Pipeline:    pitch.NewPipeline(llm, logger),
		logger:      logger,
		rateLimiter: middleware.NewRateLimiter(time.Microsecond, 1000),
	}
	e := echo.New()
	svc.RegisterRoutes(e)
	return svc, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{})
	rec := doJSON(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Welcome to PeachMe API")
}

func TestHealthz(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{})
	rec := doJSON(e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChat(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{"Good pitch opening."}})

	rec := doJSON(e, http.MethodPost, "/api/chat", `{"message": "How should I open?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var response ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, "Good pitch opening.", response.Response)
	require.NotEmpty(t, response.ConversationID)
}

func TestChatMissingMessage(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{})
	rec := doJSON(e, http.MethodPost, "/api/chat", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "message is required")
}

func TestChatContinuesConversation(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{"first reply", "second reply"}})

	rec := doJSON(e, http.MethodPost, "/api/chat", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = doJSON(e, http.MethodPost, "/api/chat", `{"message": "again", "conversation_id": "`+first.ConversationID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Equal(t, first.ConversationID, second.ConversationID)
}

func TestChatLLMErrorFallsBack(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{errs: []error{errors.New("model down")}})

	rec := doJSON(e, http.MethodPost, "/api/chat", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "I'm sorry, I encountered an error")
}

func TestChatStructured(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{
		`{"clarity": 4, "clarity_feedback": "a", "content": 3, "content_feedback": "b",
		  "structure": 5, "structure_feedback": "c", "delivery": 4, "delivery_feedback": "d",
		  "feedback": "tighten the close"}`,
	}})

	rec := doJSON(e, http.MethodPost, "/api/chat/structured", `{"message": "my full pitch"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Clarity: 4/5")
	require.Contains(t, rec.Body.String(), "tighten the close")
}

func TestChatStream(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{"streamed words here"}})
	chunksBefore := observability.GlobalMetrics().Snapshot().StreamChunks

	rec := doJSON(e, http.MethodPost, "/api/chat/stream", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/event-stream")

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "))
	require.Contains(t, body, "streamed ")
	require.Contains(t, body, "\n\n")
	require.Greater(t, observability.GlobalMetrics().Snapshot().StreamChunks, chunksBefore)
}

func TestChatStreamError(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{errs: []error{errors.New("model down")}})

	rec := doJSON(e, http.MethodPost, "/api/chat/stream", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "data: Error: ")
}

func TestGetConversationMessages(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{"the reply"}})

	rec := doJSON(e, http.MethodPost, "/api/chat", `{"message": "hi there"}`)
	var created ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(e, http.MethodGet, "/api/conversations/"+created.ConversationID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response ConversationMessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, created.ConversationID, response.ConversationID)
	require.Len(t, response.Messages, 2)
	require.Equal(t, "user", response.Messages[0].Role)
	require.Equal(t, "hi there", response.Messages[0].Content)
	require.Equal(t, "assistant", response.Messages[1].Role)
}

func TestGetConversationMessagesNotFound(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{})
	rec := doJSON(e, http.MethodGet, "/api/conversations/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Conversation not found")
}

func TestAnalyzeTranscript(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{
		`{"industry": "Fintech", "verticals": ["Payments"], "problem": "Fees", "summary": "s"}`,
		`{"clarity": 4, "clarity_feedback": "a", "content": 4, "content_feedback": "b",
		  "structure": 4, "structure_feedback": "c", "delivery": 4, "delivery_feedback": "d",
		  "feedback": "solid"}`,
	}})

	rec := doJSON(e, http.MethodPost, "/api/video/analyze", `{"message": "transcript"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result pitch.EnhancedEvaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 4, result.Clarity)
	require.Equal(t, "Fintech", result.Context.Industry)
}

func TestAnalyzeTranscriptFailure(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{errs: []error{errors.New("model down")}})

	rec := doJSON(e, http.MethodPost, "/api/video/analyze", `{"message": "transcript"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "An error occurred")
}

func TestExtractContext(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{
		"```json\n{\"industry\": \"Edtech\", \"verticals\": [\"K-12\"], \"problem\": \"Engagement\", \"summary\": \"s\"}\n```",
	}})

	rec := doJSON(e, http.MethodPost, "/api/video/extract-context", `{"message": "transcript"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var extraction pitch.ContextExtraction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &extraction))
	require.Equal(t, "Edtech", extraction.Industry)
}

func TestMarketResearch(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{
		`{"industry": "Healthtech", "verticals": ["Telehealth"], "problem": "Access", "summary": "s"}`,
		`{"summary": "growing", "competitors": [], "market_size": {"overall": "$3B"}, "trends": []}`,
	}})

	rec := doJSON(e, http.MethodPost, "/api/video/market-research", `{"message": "transcript"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var research pitch.MarketResearch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &research))
	require.Equal(t, "$3B", research.MarketSize.Overall)
	require.NotEmpty(t, research.MarketSizeSources.Overall)
}

func TestMarketResearchDegradesGracefully(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{
		responses: []string{
			`{"industry": "Retail", "verticals": [], "problem": "p", "summary": "s"}`,
		},
		errs: []error{nil, errors.New("model down")},
	})

	rec := doJSON(e, http.MethodPost, "/api/video/market-research", `{"message": "transcript"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Unable to complete market research")
}

func TestPitchDeckContent(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{responses: []string{
		`{"industry": "SaaS", "verticals": ["DevTools"], "problem": "Toil", "summary": "s"}`,
		`{"summary": "research", "competitors": [], "market_size": {"overall": "$1B"}, "trends": []}`,
		`{"clarity": 4, "clarity_feedback": "a", "content": 4, "content_feedback": "b",
		  "structure": 4, "structure_feedback": "c", "delivery": 4, "delivery_feedback": "d",
		  "feedback": "f"}`,
		`{"overview": "o", "problem": "p", "whynow": "w", "solution": "sol", "market": "m"}`,
		"```jsx\nconst PitchDeck = () => <div />;\n```",
	}})

	rec := doJSON(e, http.MethodPost, "/api/video/pitch-deck-content", `{"message": "transcript"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result pitch.DeckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "o", result.Overview)
	require.Contains(t, result.JSXCode, "const PitchDeck")
	require.NotContains(t, result.JSXCode, "```")
}

func TestTranscribeVideoMissingFile(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{})
	rec := doJSON(e, http.MethodPost, "/api/video/transcribe", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "video file is required")
}

func TestStats(t *testing.T) {
	_, e := newTestService(t, &scriptedLLM{})
	rec := doJSON(e, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "request_total")
	require.Contains(t, rec.Body.String(), "success_rate")
}
