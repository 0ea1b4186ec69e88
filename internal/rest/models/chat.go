package models

import (
	"time"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/services/agent"
)

type ChatResponse struct {
	Response       string                 `json:"response"`
	ConversationID string                 `json:"conversation_id"`
	ToolCalls      []agent.ToolCallRecord `json:"tool_calls"`
}

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversation(c *domain.Conversation) Conversation {
	return Conversation{
		ID:        c.ID.String(),
		UserID:    c.UserID.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewConversationList(convs []domain.Conversation) []Conversation {
	out := make([]Conversation, 0, len(convs))
	for i := range convs {
		out = append(out, NewConversation(&convs[i]))
	}
	return out
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationHistoryResponse struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []ChatMessage `json:"messages"`
}

func NewConversationHistory(conv *domain.Conversation, msgs []domain.Message) ConversationHistoryResponse {
	out := ConversationHistoryResponse{
		ConversationID: conv.ID.String(),
		Messages:       make([]ChatMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, ChatMessage{
			ID:        m.ID.String(),
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
