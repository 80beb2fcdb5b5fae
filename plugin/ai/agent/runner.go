package agent

import (
	"context"

	"github.com/pkg/errors"

	"github.com/peachme/peachme/plugin/ai"
)

// Runner executes a configured agent against the underlying LLM service.
type Runner struct {
	llm ai.LLMService
}

func NewRunner(llm ai.LLMService) *Runner {
	return &Runner{llm: llm}
}

// Run sends input to the agent together with optional prior conversation
// history and returns the raw model response.
func (r *Runner) Run(ctx context.Context, agentType AgentType, input string, history []ai.Message) (string, error) {
	a := Get(agentType)
	if a == nil {
		return "", errors.Errorf("unknown agent type: %s", agentType)
	}

	messages := ai.FormatMessages(a.Instructions, input, history)
	response, err := r.llm.Chat(ctx, messages)
	if err != nil {
		return "", errors.Wrapf(err, "agent %s", agentType)
	}
	return response, nil
}

// RunStream is the streaming variant of Run. Chunks of the response are
// delivered on the returned content channel; a terminal error, if any,
// arrives on the error channel.
func (r *Runner) RunStream(ctx context.Context, agentType AgentType, input string, history []ai.Message) (<-chan string, <-chan error, error) {
	a := Get(agentType)
	if a == nil {
		return nil, nil, errors.Errorf("unknown agent type: %s", agentType)
	}

	messages := ai.FormatMessages(a.Instructions, input, history)
	contentChan, errChan := r.llm.ChatStream(ctx, messages)
	return contentChan, errChan, nil
}
