// Package chat handles the conversational flow: persisting turns,
// assembling history and invoking the right agent for a reply.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/peachme/peachme/plugin/ai"
	"github.com/peachme/peachme/plugin/ai/agent"
	"github.com/peachme/peachme/server/pitch"
	"github.com/peachme/peachme/store"
)

// fallbackResponse is returned to the user when the model call fails. The
// conversation still records it so the exchange stays consistent.
const fallbackResponse = "I'm sorry, I encountered an error processing your request. Please try again later."

const titleMaxLen = 30

// Processor runs the end-to-end chat flow against the store and the
// configured agents.
type Processor struct {
	store    *store.Store
	runner   *agent.Runner
	pipeline *pitch.Pipeline
	logger   *slog.Logger
}

func NewProcessor(st *store.Store, llm ai.LLMService, logger *slog.Logger) *Processor {
	return &Processor{
		store:    st,
		runner:   agent.NewRunner(llm),
		pipeline: pitch.NewPipeline(llm, logger),
		logger:   logger,
	}
}

// Result is the outcome of processing one user message.
type Result struct {
	Response        string
	ConversationUID string
	Structured      bool
}

// Process stores the user message, generates a reply and stores that too.
// When conversationUID is empty or unknown a new conversation is created,
// titled with a prefix of the message. A model failure never surfaces as
// an error; the reply falls back to an apology instead.
func (p *Processor) Process(ctx context.Context, content string, conversationUID string, userID *string, structured bool) (*Result, error) {
	conversation, history, err := p.prepare(ctx, content, conversationUID, userID)
	if err != nil {
		return nil, err
	}

	var response string
	if structured {
		evaluation, evalErr := p.pipeline.Evaluate(ctx, content)
		if evalErr != nil {
			p.logger.Error("structured analysis failed", "error", evalErr, "conversation", conversation.UID)
			response = fallbackResponse
		} else {
			response = formatEvaluation(evaluation)
		}
	} else {
		response, err = p.runner.Run(ctx, agent.AgentTypeChat, content, history)
		if err != nil {
			p.logger.Error("chat response failed", "error", err, "conversation", conversation.UID)
			response = fallbackResponse
		}
	}

	if err := p.saveMessage(ctx, conversation.ID, store.MessageRoleAssistant, response); err != nil {
		return nil, err
	}

	return &Result{
		Response:        response,
		ConversationUID: conversation.UID,
		Structured:      structured,
	}, nil
}

// ProcessStream is the streaming variant of Process. Chunks arrive on the
// returned channel; once the stream ends the accumulated reply is
// persisted as the assistant message. An in-stream model failure persists
// the apology fallback and surfaces the error on the error channel.
func (p *Processor) ProcessStream(ctx context.Context, content string, conversationUID string, userID *string) (string, <-chan string, <-chan error, error) {
	conversation, history, err := p.prepare(ctx, content, conversationUID, userID)
	if err != nil {
		return "", nil, nil, err
	}

	contentChan, errChan, err := p.runner.RunStream(ctx, agent.AgentTypeChat, content, history)
	if err != nil {
		return "", nil, nil, err
	}

	out := make(chan string)
	outErr := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(outErr)

		var full string
		var streamErr error
		for contentChan != nil || errChan != nil {
			select {
			case chunk, ok := <-contentChan:
				if !ok {
					contentChan = nil
					continue
				}
				full += chunk
				select {
				case out <- chunk:
				case <-ctx.Done():
					streamErr = ctx.Err()
					contentChan, errChan = nil, nil
				}
			case err, ok := <-errChan:
				if !ok {
					errChan = nil
					continue
				}
				if err != nil {
					streamErr = err
					contentChan, errChan = nil, nil
				}
			}
		}

		if streamErr != nil {
			p.logger.Error("streaming chat failed", "error", streamErr, "conversation", conversation.UID)
			if full == "" {
				full = fallbackResponse
			}
			outErr <- streamErr
		}
		// Persist whatever the client saw, detached from the request
		// context which may already be canceled.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.saveMessage(saveCtx, conversation.ID, store.MessageRoleAssistant, full); err != nil {
			p.logger.Error("failed to persist streamed response", "error", err, "conversation", conversation.UID)
		}
	}()

	return conversation.UID, out, outErr, nil
}

// Save stores a transcript as the opening user message of a fresh
// conversation without invoking any agent.
func (p *Processor) Save(ctx context.Context, transcript string, userID *string) (*store.Conversation, error) {
	conversation, err := p.createConversation(ctx, transcript, userID)
	if err != nil {
		return nil, err
	}
	if err := p.saveMessage(ctx, conversation.ID, store.MessageRoleUser, transcript); err != nil {
		return nil, err
	}
	return conversation, nil
}

// prepare resolves the conversation, saves the incoming user message and
// returns the prior history for the model.
func (p *Processor) prepare(ctx context.Context, content string, conversationUID string, userID *string) (*store.Conversation, []ai.Message, error) {
	var conversation *store.Conversation
	var err error

	if conversationUID != "" {
		conversation, err = p.store.GetConversation(ctx, &store.FindConversation{UID: &conversationUID})
		if err != nil {
			return nil, nil, errors.Wrap(err, "find conversation")
		}
		if conversation == nil {
			p.logger.Info("conversation not found, creating a new one", "conversation", conversationUID)
		}
	}
	if conversation == nil {
		conversation, err = p.createConversation(ctx, content, userID)
		if err != nil {
			return nil, nil, err
		}
	}

	// History is everything before the message being processed.
	messages, err := p.store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "list messages")
	}
	history := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, ai.Message{Role: string(m.Role), Content: m.Content})
	}

	if err := p.saveMessage(ctx, conversation.ID, store.MessageRoleUser, content); err != nil {
		return nil, nil, err
	}

	return conversation, history, nil
}

func (p *Processor) createConversation(ctx context.Context, content string, userID *string) (*store.Conversation, error) {
	now := time.Now().Unix()
	conversation, err := p.store.CreateConversation(ctx, &store.Conversation{
		UID:       shortuuid.New(),
		Title:     titleFromContent(content),
		UserID:    userID,
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create conversation")
	}
	return conversation, nil
}

func (p *Processor) saveMessage(ctx context.Context, conversationID int32, role store.MessageRole, content string) error {
	if _, err := p.store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedTs:      time.Now().Unix(),
	}); err != nil {
		return errors.Wrapf(err, "save %s message", role)
	}
	return nil
}

func titleFromContent(content string) string {
	runes := []rune(content)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return content
}

func formatEvaluation(e *pitch.Evaluation) string {
	return fmt.Sprintf(`Pitch Analysis Results:
Clarity: %d/5
Content: %d/5
Structure: %d/5
Delivery: %d/5

Detailed Feedback:
%s`, e.Clarity, e.Content, e.Structure, e.Delivery, e.Feedback)
}
