package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peachme/peachme/server/internal/observability"
	"github.com/peachme/peachme/store"
)

// ChatRequest is the body for all chat endpoints. ConversationID is the
// conversation UID; when empty or unknown a new conversation starts.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the reply envelope for chat endpoints.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// MessageView is the wire form of a stored message.
type MessageView struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	CreatedTs      int64  `json:"created_ts"`
}

// ConversationMessagesResponse lists a conversation's messages.
type ConversationMessagesResponse struct {
	Messages       []MessageView `json:"messages"`
	ConversationID string        `json:"conversation_id"`
}

// Chat handles a plain conversational turn.
func (s *APIV1Service) Chat(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	result, err := s.Processor.Process(c.Request().Context(), request.Message, request.ConversationID, nil, false)
	if err != nil {
		return s.internalError(c, "chat", err)
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Response:       result.Response,
		ConversationID: result.ConversationUID,
	})
}

// ChatStructured handles a turn answered with a structured pitch analysis.
func (s *APIV1Service) ChatStructured(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	result, err := s.Processor.Process(c.Request().Context(), request.Message, request.ConversationID, nil, true)
	if err != nil {
		return s.internalError(c, "chat structured", err)
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Response:       result.Response,
		ConversationID: result.ConversationUID,
	})
}

// ChatStream handles a chat turn over server-sent events. Each model chunk
// arrives as one `data:` event; an in-stream failure is delivered as a
// final `data: Error: ...` event since the 200 header is already out.
func (s *APIV1Service) ChatStream(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	ctx := c.Request().Context()
	_, contentChan, errChan, err := s.Processor.ProcessStream(ctx, request.Message, request.ConversationID, nil)
	if err != nil {
		return s.internalError(c, "chat stream", err)
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)

	for chunk := range contentChan {
		if _, err := fmt.Fprintf(response, "data: %s\n\n", chunk); err != nil {
			return nil
		}
		response.Flush()
		observability.GlobalMetrics().RecordStreamChunk()
	}
	if streamErr := <-errChan; streamErr != nil {
		fmt.Fprintf(response, "data: Error: %s\n\n", streamErr.Error())
		response.Flush()
	}
	return nil
}

// GetConversationMessages returns all messages of a conversation in
// chronological order.
func (s *APIV1Service) GetConversationMessages(c echo.Context) error {
	uid := c.Param("id")
	ctx := c.Request().Context()

	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &uid})
	if err != nil {
		return s.internalError(c, "get conversation", err)
	}
	if conversation == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}

	messages, err := s.Store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	if err != nil {
		return s.internalError(c, "list messages", err)
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			ID:             m.UID,
			ConversationID: conversation.UID,
			Role:           string(m.Role),
			Content:        m.Content,
			CreatedTs:      m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, ConversationMessagesResponse{
		Messages:       views,
		ConversationID: conversation.UID,
	})
}
