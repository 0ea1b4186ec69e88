// Package agent turns natural-language chat messages into task operations.
// It persists the conversation, calls the external model with the tool
// catalog and executes whatever tool calls come back.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/clients/llm"
	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/storage"
)

const systemPrompt = `You are an AI assistant that helps users manage their tasks through natural language.
You can create, view, update, complete, and delete tasks. Always use the provided tools to perform these operations.
Be helpful and confirm actions with the user.`

const fallbackSystemPrompt = `You are an AI assistant that helps users manage their tasks through natural language.
If the user wants to create, view, update, complete, or delete tasks, respond with instructions for the system to handle these operations.`

const (
	defaultReply = "I processed your request."
	apologyReply = "Sorry, I encountered an error processing your request. Please try again."
	defaultLimit = 20
	maxListLimit = 100
)

// Completer is the single call this service needs from the model API.
// *llm.Client satisfies it; tests substitute fakes.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// ToolCallRecord reports one executed tool call back to the API caller.
type ToolCallRecord struct {
	Name      string    `json:"name"`
	Arguments Arguments `json:"arguments"`
	Result    Result    `json:"result"`
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Response       string
	ConversationID uuid.UUID
	ToolCalls      []ToolCallRecord
}

type Service struct {
	log        *logrus.Entry
	convs      storage.ConversationStore
	dispatcher *Dispatcher
	llm        Completer
}

// New wires the orchestrator. A nil completer puts the service in demo mode:
// chat turns still persist both messages but answer with a canned reply.
func New(log *logrus.Logger, convs storage.ConversationStore, dispatcher *Dispatcher, completer Completer) *Service {
	return &Service{
		log:        logrus.NewEntry(log),
		convs:      convs,
		dispatcher: dispatcher,
		llm:        completer,
	}
}

// Chat runs one turn for the caller. The turn always completes with some
// assistant message: model failures are absorbed, first by retrying without
// the tool catalog, then by a generic apology.
func (s *Service) Chat(ctx context.Context, caller *domain.User, pathUserID uuid.UUID, message string, conversationID *uuid.UUID) (*TurnResult, error) {
	const op = "agent.Service.Chat"
	log := s.log.WithField("operation", op).WithField("user_id", caller.ID)

	if caller.ID != pathUserID {
		return nil, domain.ErrForbidden
	}

	conv, err := s.resolveConversation(ctx, caller, conversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMsg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		UserID:         caller.ID,
		Role:           domain.RoleUser,
		Content:        message,
		CreatedAt:      now,
	}
	if err := s.convs.AppendMessage(ctx, userMsg); err != nil {
		log.WithError(err).Errorf("%s: failed to store user message", op)
		return nil, err
	}

	history, err := s.convs.MessagesByConversation(ctx, conv.ID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load history", op)
		return nil, err
	}

	response, toolCalls := s.runAgent(ctx, log, caller, message, history)
	if toolCalls == nil {
		// Demo-mode and fallback turns run no tools; clients still expect
		// an array, not null.
		toolCalls = []ToolCallRecord{}
	}

	assistantMsg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		UserID:         caller.ID,
		Role:           domain.RoleAssistant,
		Content:        response,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.convs.AppendMessage(ctx, assistantMsg); err != nil {
		log.WithError(err).Errorf("%s: failed to store assistant message", op)
		return nil, err
	}
	if err := s.convs.TouchConversation(ctx, conv.ID, assistantMsg.CreatedAt); err != nil {
		log.WithError(err).Errorf("%s: failed to touch conversation", op)
		return nil, err
	}

	return &TurnResult{
		Response:       response,
		ConversationID: conv.ID,
		ToolCalls:      toolCalls,
	}, nil
}

// Conversations pages through the caller's conversations, newest activity
// first.
func (s *Service) Conversations(ctx context.Context, caller *domain.User, pathUserID uuid.UUID, offset, limit int) ([]domain.Conversation, error) {
	const op = "agent.Service.Conversations"

	if caller.ID != pathUserID {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	convs, err := s.convs.ConversationsByOwner(ctx, caller.ID, offset, limit)
	if err != nil {
		s.log.WithError(err).Errorf("%s: failed to list conversations", op)
		return nil, err
	}
	return convs, nil
}

// History returns a conversation's ordered messages. A missing conversation
// and a foreign one are refused identically.
func (s *Service) History(ctx context.Context, caller *domain.User, pathUserID uuid.UUID, conversationID uuid.UUID) (*domain.Conversation, []domain.Message, error) {
	const op = "agent.Service.History"

	if caller.ID != pathUserID {
		return nil, nil, domain.ErrForbidden
	}

	conv, err := s.convs.ConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrForbidden
		}
		s.log.WithError(err).Errorf("%s: failed to load conversation", op)
		return nil, nil, err
	}
	if conv.UserID != caller.ID {
		return nil, nil, domain.ErrForbidden
	}

	msgs, err := s.convs.MessagesByConversation(ctx, conversationID)
	if err != nil {
		s.log.WithError(err).Errorf("%s: failed to load messages", op)
		return nil, nil, err
	}
	return conv, msgs, nil
}

func (s *Service) resolveConversation(ctx context.Context, caller *domain.User, conversationID *uuid.UUID) (*domain.Conversation, error) {
	const op = "agent.Service.resolveConversation"

	if conversationID == nil {
		now := time.Now().UTC()
		conv := &domain.Conversation{
			ID:        uuid.New(),
			UserID:    caller.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.convs.CreateConversation(ctx, conv); err != nil {
			s.log.WithError(err).Errorf("%s: failed to create conversation", op)
			return nil, err
		}
		return conv, nil
	}

	conv, err := s.convs.ConversationByID(ctx, *conversationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		s.log.WithError(err).Errorf("%s: failed to load conversation", op)
		return nil, err
	}
	if conv.UserID != caller.ID {
		return nil, domain.ErrForbidden
	}
	return conv, nil
}

// runAgent performs the model round trip and tool execution for one turn.
// The returned response is never empty.
func (s *Service) runAgent(ctx context.Context, log *logrus.Entry, caller *domain.User, message string, history []domain.Message) (string, []ToolCallRecord) {
	if s.llm == nil {
		return fmt.Sprintf("Demo mode: I received your message '%s'. Configure a model API key to enable the assistant.", message), nil
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}

	resp, err := s.llm.CreateChatCompletion(ctx, llm.ChatRequest{
		Messages:   messages,
		Tools:      Catalog(),
		ToolChoice: "auto",
	})
	if err != nil {
		log.WithError(err).Warn("model call with tools failed, retrying without tool catalog")
		return s.runFallback(ctx, log, history), nil
	}

	choice := resp.Choices[0]
	records := make([]ToolCallRecord, 0, len(choice.Message.ToolCalls))
	for _, call := range choice.Message.ToolCalls {
		records = append(records, s.executeToolCall(ctx, log, caller, call))
	}

	content := strings.TrimSpace(choice.Message.Content)
	if len(records) > 0 {
		var b strings.Builder
		b.WriteString(content)
		for _, rec := range records {
			b.WriteString(fmt.Sprintf("\n\nResult from %s: %s", rec.Name, rec.Result.Message))
		}
		content = strings.TrimSpace(b.String())
	}
	if content == "" {
		content = defaultReply
	}
	return content, records
}

// executeToolCall decodes one requested call and dispatches it. The
// authenticated caller's id is always written over the model-supplied
// user_id before dispatch.
func (s *Service) executeToolCall(ctx context.Context, log *logrus.Entry, caller *domain.User, call llm.ToolCall) ToolCallRecord {
	name := ToolName(call.Function.Name)

	var args Arguments
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			log.WithError(err).WithField("tool", call.Function.Name).Warn("malformed tool arguments")
			return ToolCallRecord{
				Name:      call.Function.Name,
				Arguments: Arguments{UserID: caller.ID.String()},
				Result:    failure("malformed arguments for tool %q", call.Function.Name),
			}
		}
	}
	args.UserID = caller.ID.String()

	result := s.dispatcher.Dispatch(ctx, name, args)
	log.WithField("tool", call.Function.Name).WithField("success", result.Success).Info("tool call executed")

	return ToolCallRecord{
		Name:      call.Function.Name,
		Arguments: args,
		Result:    result,
	}
}

// runFallback retries the turn without the tool catalog. If that fails too,
// the apology stands in so the turn still yields an assistant message.
func (s *Service) runFallback(ctx context.Context, log *logrus.Entry, history []domain.Message) string {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: fallbackSystemPrompt})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}

	resp, err := s.llm.CreateChatCompletion(ctx, llm.ChatRequest{Messages: messages})
	if err != nil {
		log.WithError(err).Error("fallback model call failed")
		return apologyReply
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return defaultReply
	}
	return content
}
