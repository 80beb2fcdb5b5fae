package pitch

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/peachme/peachme/plugin/ai"
	apperrors "github.com/peachme/peachme/server/internal/errors"
)

// scriptedLLM replays a fixed sequence of responses, one per Chat call.
type scriptedLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (s *scriptedLLM) Chat(_ context.Context, messages []ai.Message) (string, error) {
	idx := s.calls
	s.calls++
	if len(messages) > 0 {
		s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	}
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

func (s *scriptedLLM) ChatStream(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	contentChan := make(chan string, 1)
	errChan := make(chan error, 1)
	response, err := s.Chat(ctx, messages)
	if err != nil {
		errChan <- err
	} else {
		contentChan <- response
	}
	close(contentChan)
	close(errChan)
	return contentChan, errChan
}

func newTestPipeline(llm ai.LLMService) *Pipeline {
	return NewPipeline(llm, slog.Default())
}

func TestExtractContext(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"```json\n{\"industry\": \"Fintech\", \"verticals\": [\"B2B Payments\"], \"problem\": \"Slow settlement\", \"summary\": \"A payments startup.\"}\n```",
	}}
	p := newTestPipeline(llm)

	extraction, err := p.ExtractContext(context.Background(), "our pitch transcript")
	require.NoError(t, err)
	require.Equal(t, "Fintech", extraction.Industry)
	require.Equal(t, []string{"B2B Payments"}, extraction.Verticals)
	require.Equal(t, "Slow settlement", extraction.Problem)
}

func TestExtractContextUnparseableFallsBack(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"I cannot help with that"}}
	p := newTestPipeline(llm)

	extraction, err := p.ExtractContext(context.Background(), "  We automate invoice reconciliation for mid-market CFOs.  ")
	require.NoError(t, err)
	require.Equal(t, "Technology", extraction.Industry)
	require.Empty(t, extraction.Verticals)
	require.NotNil(t, extraction.Verticals)
	require.Equal(t, "We automate invoice reconciliation for mid-market CFOs.", extraction.Summary)
}

func TestExtractContextFallbackTruncatesSummary(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"not json"}}
	p := newTestPipeline(llm)

	long := strings.Repeat("pitch ", 100)
	extraction, err := p.ExtractContext(context.Background(), long)
	require.NoError(t, err)
	require.Len(t, []rune(extraction.Summary), fallbackSummaryLen)
}

func TestEvaluateUnparseableCarriesCode(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"not json at all"}}
	p := newTestPipeline(llm)

	_, err := p.Evaluate(context.Background(), "transcript")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeAgentExecutionFailed))
}

func TestStageErrorsAreCoded(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("upstream down")}}
	p := newTestPipeline(llm)

	_, err := p.Evaluate(context.Background(), "transcript")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeAgentExecutionFailed))
}

func TestStageErrorsKeepExistingCode(t *testing.T) {
	llm := &scriptedLLM{errs: []error{apperrors.LLMUnavailable("AI is not configured")}}
	p := newTestPipeline(llm)

	_, err := p.Evaluate(context.Background(), "transcript")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeLLMUnavailable))
	require.False(t, apperrors.IsCode(err, apperrors.ErrCodeAgentExecutionFailed))
}

func TestEvaluateClampsRatings(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"clarity": 9, "clarity_feedback": "a", "content": 0, "content_feedback": "b",
		  "structure": 3, "structure_feedback": "c", "delivery": -2, "delivery_feedback": "d",
		  "feedback": "overall"}`,
	}}
	p := newTestPipeline(llm)

	evaluation, err := p.Evaluate(context.Background(), "transcript")
	require.NoError(t, err)
	require.Equal(t, 5, evaluation.Clarity)
	require.Equal(t, 1, evaluation.Content)
	require.Equal(t, 3, evaluation.Structure)
	require.Equal(t, 1, evaluation.Delivery)
	require.Equal(t, "overall", evaluation.Feedback)
}

func TestAnalyze(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"industry": "Edtech", "verticals": ["K-12"], "problem": "Engagement", "summary": "s"}`,
		`{"clarity": 4, "clarity_feedback": "a", "content": 4, "content_feedback": "b",
		  "structure": 4, "structure_feedback": "c", "delivery": 4, "delivery_feedback": "d",
		  "feedback": "solid"}`,
	}}
	p := newTestPipeline(llm)

	result, err := p.Analyze(context.Background(), "transcript")
	require.NoError(t, err)
	require.Equal(t, "Edtech", result.Context.Industry)
	require.Equal(t, 4, result.Clarity)
}

func TestResearchFillsMissingSources(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"summary": "Growing market",
		  "competitors": [{"name": "Acme", "description": "rival", "url": "https://acme.example"}],
		  "market_size": {"overall": "$5B", "growth": "12%"},
		  "market_size_sources": {"overall": "https://example.com/report"},
		  "trends": [{"title": "Consolidation", "description": "d"}]}`,
	}}
	p := newTestPipeline(llm)

	extraction := &ContextExtraction{Industry: "Healthcare", Verticals: []string{"Telehealth"}, Problem: "Access"}
	research := p.Research(context.Background(), extraction)

	require.Equal(t, "Growing market", research.Summary)
	require.Equal(t, "https://example.com/report", research.MarketSizeSources.Overall)
	require.True(t, strings.HasPrefix(research.MarketSizeSources.Growth, searchBase))
	require.Contains(t, research.MarketSizeSources.Growth, "Healthcare")
	require.True(t, strings.HasPrefix(research.MarketSizeSources.Projection, searchBase))
	require.True(t, strings.HasPrefix(research.TrendsSource, searchBase))
	require.Equal(t, "No growth calculation provided", research.GrowthCalculation)
}

func TestResearchFallbackOnError(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("upstream down")}}
	p := newTestPipeline(llm)

	extraction := &ContextExtraction{Industry: "Fintech", Verticals: []string{"Payments"}}
	research := p.Research(context.Background(), extraction)

	require.Equal(t, "Unable to complete market research due to an error.", research.Summary)
	require.Equal(t, "Unknown", research.MarketSize.Overall)
	require.Empty(t, research.Competitors)
	require.True(t, strings.HasPrefix(research.MarketSizeSources.Overall, searchBase))
	require.NotContains(t, research.MarketSizeSources.Overall, " ")
}

func TestResearchFallbackOnGarbage(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"not json at all"}}
	p := newTestPipeline(llm)

	research := p.Research(context.Background(), &ContextExtraction{Industry: "Retail"})
	require.Equal(t, "Unable to complete market research due to an error.", research.Summary)
}

func TestPitchDeck(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"overview": "o", "problem": "p", "whynow": "w", "solution": "s", "market": "m"}`,
		"```jsx\nconst PitchDeck = () => <div />;\nexport default PitchDeck;\n```",
	}}
	p := newTestPipeline(llm)

	extraction := &ContextExtraction{Industry: "SaaS", Verticals: []string{"DevTools"}, Problem: "Toil"}
	research := &MarketResearch{
		Summary:     "summary",
		Competitors: []Competitor{{Name: "Rival"}},
		MarketSize:  MarketSize{Overall: "$1B", Growth: "10%"},
	}
	result := p.PitchDeck(context.Background(), extraction, research, nil)

	require.Equal(t, "o", result.Overview)
	require.Equal(t, "m", result.Market)
	require.False(t, strings.Contains(result.JSXCode, "```"))
	require.Contains(t, result.JSXCode, "const PitchDeck")

	// The JSX prompt should carry the research figures.
	require.Len(t, llm.prompts, 2)
	require.Contains(t, llm.prompts[1], "$1B")
	require.Contains(t, llm.prompts[1], "Rival")
}

func TestPitchDeckContentFailure(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("boom")}}
	p := newTestPipeline(llm)

	result := p.PitchDeck(context.Background(), &ContextExtraction{Industry: "SaaS"}, nil, nil)
	require.Equal(t, "Default overview content due to error", result.Overview)
	require.Equal(t, "// Error generating JSX component", result.JSXCode)
}

func TestPitchDeckJSXFailure(t *testing.T) {
	llm := &scriptedLLM{
		responses: []string{
			`{"overview": "o", "problem": "p", "whynow": "w", "solution": "s", "market": "m"}`,
		},
		errs: []error{nil, errors.New("boom")},
	}
	p := newTestPipeline(llm)

	result := p.PitchDeck(context.Background(), &ContextExtraction{Industry: "SaaS"}, nil, nil)
	require.Equal(t, "o", result.Overview)
	require.Equal(t, "// Error generating JSX component", result.JSXCode)
}
