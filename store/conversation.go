package store

// Conversation is a persisted coaching session.
type Conversation struct {
	ID        int32
	UID       string
	Title     string
	UserID    *string
	CreatedTs int64
	UpdatedTs int64
}

type FindConversation struct {
	ID     *int32
	UID    *string
	UserID *string
}

type UpdateConversation struct {
	ID        int32
	Title     *string
	UpdatedTs *int64
}

type DeleteConversation struct {
	ID int32
}

// MessageRole is the author of a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is a single turn in a conversation. Messages are immutable once
// created; chronological order is by CreatedTs.
type Message struct {
	ID             int32
	UID            string
	ConversationID int32
	Role           MessageRole
	Content        string
	CreatedTs      int64
}

type FindMessage struct {
	ID             *int32
	UID            *string
	ConversationID *int32
}

type DeleteMessage struct {
	ID             *int32
	ConversationID *int32
}
