package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups the chat messages of one user. UpdatedAt tracks the
// timestamp of its latest message.
type Conversation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MessageRole is the author side of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is an append-only entry in a conversation, ordered by CreatedAt.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
