package agent

// AgentType identifies a configured prompt/role bundle.
type AgentType string

const (
	// AgentTypeChat is the general coaching chat agent.
	AgentTypeChat AgentType = "chat"
	// AgentTypeContextExtraction extracts industry/verticals/problem from a transcript.
	AgentTypeContextExtraction AgentType = "context_extraction"
	// AgentTypePitchAnalysis scores a pitch on four criteria.
	AgentTypePitchAnalysis AgentType = "pitch_analysis"
	// AgentTypeMarketResearch researches competitors, market size and trends.
	AgentTypeMarketResearch AgentType = "market_research"
	// AgentTypeDeckContent writes slide copy for a pitch deck.
	AgentTypeDeckContent AgentType = "deck_content"
	// AgentTypeJSXDeck renders a pitch deck as a React component.
	AgentTypeJSXDeck AgentType = "jsx_deck"
)

func (t AgentType) String() string {
	return string(t)
}

// Agent is a prompt/role bundle run against the LLM service.
type Agent struct {
	Type         AgentType
	Instructions string
}
