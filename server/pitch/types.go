package pitch

// ContextExtraction holds the contextual information pulled out of a pitch
// transcript before any downstream analysis runs.
type ContextExtraction struct {
	Industry  string   `json:"industry"`
	Verticals []string `json:"verticals"`
	Problem   string   `json:"problem"`
	Summary   string   `json:"summary"`
}

// Evaluation is the structured scorecard for a pitch. Ratings are on a
// 1 to 5 scale.
type Evaluation struct {
	Clarity           int    `json:"clarity"`
	ClarityFeedback   string `json:"clarity_feedback"`
	Content           int    `json:"content"`
	ContentFeedback   string `json:"content_feedback"`
	Structure         int    `json:"structure"`
	StructureFeedback string `json:"structure_feedback"`
	Delivery          int    `json:"delivery"`
	DeliveryFeedback  string `json:"delivery_feedback"`
	Feedback          string `json:"feedback"`
}

// EnhancedEvaluation bundles an evaluation with the extracted context so a
// single analyze call returns both.
type EnhancedEvaluation struct {
	Evaluation
	Context ContextExtraction `json:"context"`
}

// Competitor describes one company found during market research.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// MarketSize captures headline market sizing figures.
type MarketSize struct {
	Overall    string `json:"overall"`
	Growth     string `json:"growth,omitempty"`
	Projection string `json:"projection,omitempty"`
}

// MarketSizeSources lists a source URL per market size metric.
type MarketSizeSources struct {
	Overall    string `json:"overall"`
	Growth     string `json:"growth"`
	Projection string `json:"projection"`
}

// Trend describes one market trend.
type Trend struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MarketResearch is the full research result. Every sizing metric carries
// a source URL, synthesized from a search query when the model omits one.
type MarketResearch struct {
	Summary           string            `json:"summary"`
	Competitors       []Competitor      `json:"competitors"`
	MarketSize        MarketSize        `json:"market_size"`
	MarketSizeSources MarketSizeSources `json:"market_size_sources"`
	Trends            []Trend           `json:"trends"`
	TrendsSource      string            `json:"trends_source"`
	GrowthCalculation string            `json:"growth_calculation"`
}

// DeckContent holds the generated copy for each slide of the deck.
type DeckContent struct {
	Overview string `json:"overview"`
	Problem  string `json:"problem"`
	WhyNow   string `json:"whynow"`
	Solution string `json:"solution"`
	Market   string `json:"market"`
}

// DeckResult is the complete pitch deck output, slide content plus the
// rendered JSX component.
type DeckResult struct {
	Overview string `json:"overview"`
	Problem  string `json:"problem"`
	WhyNow   string `json:"whynow"`
	Solution string `json:"solution"`
	Market   string `json:"market"`
	JSXCode  string `json:"jsx_code"`
}
