package pitch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/peachme/peachme/plugin/ai"
	"github.com/peachme/peachme/plugin/ai/agent"
	apperrors "github.com/peachme/peachme/server/internal/errors"
	"github.com/peachme/peachme/server/internal/observability"
)

const searchBase = "https://www.google.com/search?q="

// Pipeline orchestrates the analysis stages for a pitch transcript. Each
// stage is one agent call; PitchDeck chains deck content and JSX
// generation.
type Pipeline struct {
	runner *agent.Runner
	logger *slog.Logger
}

func NewPipeline(llm ai.LLMService, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		runner: agent.NewRunner(llm),
		logger: logger,
	}
}

// ExtractContext pulls industry, verticals, problem and a short summary
// out of a pitch transcript. An unparseable model response degrades to a
// generic extraction built from the transcript itself, so downstream
// stages always have a context to work with.
func (p *Pipeline) ExtractContext(ctx context.Context, transcript string) (*ContextExtraction, error) {
	response, err := p.run(ctx, agent.AgentTypeContextExtraction, transcript)
	if err != nil {
		return nil, err
	}

	extraction := &ContextExtraction{}
	if err := json.Unmarshal([]byte(agent.ExtractJSON(response)), extraction); err != nil {
		p.logger.Warn("context extraction response unparseable, using generic context", "error", err)
		return fallbackExtraction(transcript), nil
	}
	if extraction.Verticals == nil {
		extraction.Verticals = []string{}
	}
	return extraction, nil
}

// Evaluate scores a pitch transcript on clarity, content, structure and
// delivery. Returned ratings are clamped to the 1 to 5 scale regardless
// of what the model produced.
func (p *Pipeline) Evaluate(ctx context.Context, transcript string) (*Evaluation, error) {
	response, err := p.run(ctx, agent.AgentTypePitchAnalysis, transcript)
	if err != nil {
		return nil, err
	}

	evaluation := &Evaluation{}
	if err := json.Unmarshal([]byte(agent.ExtractJSON(response)), evaluation); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAgentExecutionFailed, "parse pitch evaluation response")
	}
	evaluation.Clarity = clampRating(evaluation.Clarity)
	evaluation.Content = clampRating(evaluation.Content)
	evaluation.Structure = clampRating(evaluation.Structure)
	evaluation.Delivery = clampRating(evaluation.Delivery)
	return evaluation, nil
}

// Analyze runs context extraction and evaluation on the same transcript
// and bundles the results.
func (p *Pipeline) Analyze(ctx context.Context, transcript string) (*EnhancedEvaluation, error) {
	extraction, err := p.ExtractContext(ctx, transcript)
	if err != nil {
		return nil, err
	}
	evaluation, err := p.Evaluate(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return &EnhancedEvaluation{
		Evaluation: *evaluation,
		Context:    *extraction,
	}, nil
}

// Research runs market research for the extracted pitch context. It never
// fails: a model or parse error yields a synthesized result whose source
// fields point at relevant search queries, and any source the model
// omitted is filled the same way.
func (p *Pipeline) Research(ctx context.Context, extraction *ContextExtraction) *MarketResearch {
	prompt := fmt.Sprintf(`Research the following:

Industry: %s
Market Verticals: %s
Problem: %s

Please find:
1. Top competitors addressing this problem
2. Current market size (in $ value)
3. Market growth rate and projections
4. Key market trends

Provide structured, factual information with specific numbers and data points where possible.

*** MANDATORY REQUIREMENT: You MUST include a specific source URL for EACH of these data points: ***
- Overall market size figure
- Annual growth rate
- Future market projection
- Market trends

If projecting growth, explain how the projection was calculated.
Format your response as valid JSON matching the structure in the instructions.`,
		extraction.Industry, strings.Join(extraction.Verticals, ", "), extraction.Problem)

	response, err := p.run(ctx, agent.AgentTypeMarketResearch, prompt)
	if err != nil {
		p.logger.Error("market research failed, returning synthesized result", "error", err)
		return fallbackResearch(extraction)
	}

	research := &MarketResearch{}
	if err := json.Unmarshal([]byte(agent.ExtractJSON(response)), research); err != nil {
		p.logger.Error("market research response unparseable, returning synthesized result", "error", err)
		return fallbackResearch(extraction)
	}

	fillResearchDefaults(research, extraction)
	return research
}

// DeckContent generates slide copy from the extracted context, optionally
// enriched with research findings and evaluation feedback.
func (p *Pipeline) DeckContent(ctx context.Context, extraction *ContextExtraction, research *MarketResearch, evaluation *Evaluation) (*DeckContent, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `Generate content for a pitch deck with the following context:

INDUSTRY: %s
VERTICALS: %s
PROBLEM: %s
SUMMARY: %s
`, extraction.Industry, strings.Join(extraction.Verticals, ", "), extraction.Problem, extraction.Summary)

	if research != nil {
		competitorNames := make([]string, 0, len(research.Competitors))
		for _, c := range research.Competitors {
			competitorNames = append(competitorNames, c.Name)
		}
		trendTitles := make([]string, 0, len(research.Trends))
		for _, t := range research.Trends {
			trendTitles = append(trendTitles, "- "+t.Title)
		}
		fmt.Fprintf(&b, `
MARKET RESEARCH:

Market Size: %s
Growth Rate: %s
Future Projection: %s

Competitors: %s

Market Trends:
%s
`, valueOr(research.MarketSize.Overall, "Not available"),
			valueOr(research.MarketSize.Growth, "Not available"),
			valueOr(research.MarketSize.Projection, "Not available"),
			strings.Join(competitorNames, ", "),
			strings.Join(trendTitles, "\n"))
	}

	if evaluation != nil {
		fmt.Fprintf(&b, `
PITCH FEEDBACK:

Content Feedback: %s
Structure Feedback: %s
`, evaluation.ContentFeedback, evaluation.StructureFeedback)
	}

	b.WriteString("\nBased on this context, create compelling content for each slide in the pitch deck.\nRespond with JSON matching the structure in the instructions.")

	response, err := p.run(ctx, agent.AgentTypeDeckContent, b.String())
	if err != nil {
		return nil, err
	}

	content := &DeckContent{}
	if err := json.Unmarshal([]byte(agent.ExtractJSON(response)), content); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAgentExecutionFailed, "parse deck content response")
	}
	return content, nil
}

// GenerateJSX renders the slide content into a single React component.
// Markdown fences around the returned code are stripped.
func (p *Pipeline) GenerateJSX(ctx context.Context, extraction *ContextExtraction, content *DeckContent, research *MarketResearch) (string, error) {
	var researchSummary, competitorNames, marketSize, marketGrowth string
	if research != nil {
		researchSummary = research.Summary
		names := make([]string, 0, 3)
		for i, c := range research.Competitors {
			if i == 3 {
				break
			}
			names = append(names, valueOr(c.Name, "Unknown"))
		}
		competitorNames = strings.Join(names, ", ")
		marketSize = valueOr(research.MarketSize.Overall, "Unknown")
		marketGrowth = valueOr(research.MarketSize.Growth, "Unknown")
	} else {
		marketSize = "Unknown"
		marketGrowth = "Unknown"
	}

	prompt := fmt.Sprintf(`Create a beautiful, professional pitch deck page using JSX and Tailwind CSS for the following startup:

Industry: %s
Problem: %s

SLIDE CONTENT:

OVERVIEW:
%s

PROBLEM:
%s

WHY NOW:
%s

SOLUTION:
%s

MARKET:
%s

MARKET RESEARCH:
%s

Competitors: %s

Market Size: %s
Market Growth: %s

The final JSX code must be complete and ready to use within a Next.js application, with all necessary imports.`,
		extraction.Industry, extraction.Problem,
		content.Overview, content.Problem, content.WhyNow, content.Solution, content.Market,
		researchSummary, competitorNames, marketSize, marketGrowth)

	response, err := p.run(ctx, agent.AgentTypeJSXDeck, prompt)
	if err != nil {
		return "", err
	}
	return agent.CleanResponse(response), nil
}

// PitchDeck generates the full deck: slide content followed by the JSX
// component. It never fails: on error the slides fall back to placeholder
// copy and the JSX to an error stub.
func (p *Pipeline) PitchDeck(ctx context.Context, extraction *ContextExtraction, research *MarketResearch, evaluation *Evaluation) *DeckResult {
	content, err := p.DeckContent(ctx, extraction, research, evaluation)
	if err != nil {
		p.logger.Error("deck content generation failed, returning defaults", "error", err)
		return fallbackDeck()
	}

	jsxCode, err := p.GenerateJSX(ctx, extraction, content, research)
	if err != nil {
		p.logger.Error("jsx generation failed, returning defaults", "error", err)
		jsxCode = "// Error generating JSX component"
	}

	return &DeckResult{
		Overview: content.Overview,
		Problem:  content.Problem,
		WhyNow:   content.WhyNow,
		Solution: content.Solution,
		Market:   content.Market,
		JSXCode:  jsxCode,
	}
}

func (p *Pipeline) run(ctx context.Context, agentType agent.AgentType, input string) (string, error) {
	metrics := observability.GlobalMetrics()
	stage := agentType.String()
	metrics.RecordRequest(stage)
	start := time.Now()

	response, err := p.runner.Run(ctx, agentType, input, nil)
	duration := time.Since(start)
	metrics.RecordDuration(stage, duration)
	if err != nil {
		metrics.RecordFailure(stage)
		if apperrors.GetCodeFromError(err, "") != "" {
			return "", err
		}
		return "", apperrors.AgentExecutionFailed("agent "+stage, err)
	}
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Debug("pipeline stage completed",
			slog.String(observability.LogFieldStage, stage),
			slog.Int64(observability.LogFieldDuration, duration.Milliseconds()))
	} else {
		p.logger.Debug("pipeline stage completed",
			observability.LogFieldStage, stage,
			observability.LogFieldDuration, duration.Milliseconds())
	}
	return response, nil
}

func fillResearchDefaults(research *MarketResearch, extraction *ContextExtraction) {
	if research.Summary == "" {
		research.Summary = "No summary available"
	}
	if research.Competitors == nil {
		research.Competitors = []Competitor{}
	}
	if research.Trends == nil {
		research.Trends = []Trend{}
	}
	if research.GrowthCalculation == "" {
		research.GrowthCalculation = "No growth calculation provided"
	}

	if research.MarketSizeSources.Overall == "" {
		research.MarketSizeSources.Overall = searchURL(extraction.Industry + " market size " + research.MarketSize.Overall)
	}
	if research.MarketSizeSources.Growth == "" {
		research.MarketSizeSources.Growth = searchURL(extraction.Industry + " market growth rate " + research.MarketSize.Growth)
	}
	if research.MarketSizeSources.Projection == "" {
		research.MarketSizeSources.Projection = searchURL(extraction.Industry + " market projection future " + research.MarketSize.Projection)
	}
	if research.TrendsSource == "" {
		research.TrendsSource = searchURL(extraction.Industry + " market trends " + strings.Join(extraction.Verticals, " "))
	}
}

func fallbackResearch(extraction *ContextExtraction) *MarketResearch {
	return &MarketResearch{
		Summary:     "Unable to complete market research due to an error.",
		Competitors: []Competitor{},
		MarketSize:  MarketSize{Overall: "Unknown"},
		MarketSizeSources: MarketSizeSources{
			Overall:    searchURL(extraction.Industry + " market size"),
			Growth:     searchURL(extraction.Industry + " market growth rate"),
			Projection: searchURL(extraction.Industry + " market projection 2030"),
		},
		Trends:       []Trend{},
		TrendsSource: searchURL(extraction.Industry + " market trends " + strings.Join(extraction.Verticals, " ")),
	}
}

// fallbackSummaryLen bounds the synthesized summary taken from the raw
// transcript when the extraction response cannot be parsed.
const fallbackSummaryLen = 200

func fallbackExtraction(transcript string) *ContextExtraction {
	summary := strings.TrimSpace(transcript)
	if runes := []rune(summary); len(runes) > fallbackSummaryLen {
		summary = string(runes[:fallbackSummaryLen])
	}
	return &ContextExtraction{
		Industry:  "Technology",
		Verticals: []string{},
		Summary:   summary,
	}
}

func fallbackDeck() *DeckResult {
	return &DeckResult{
		Overview: "Default overview content due to error",
		Problem:  "Default problem content due to error",
		WhyNow:   "Default why now content due to error",
		Solution: "Default solution content due to error",
		Market:   "Default market content due to error",
		JSXCode:  "// Error generating JSX component",
	}
}

func searchURL(query string) string {
	return searchBase + strings.ReplaceAll(strings.TrimSpace(query), " ", "+")
}

func clampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
