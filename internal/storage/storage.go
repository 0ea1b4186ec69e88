// Package storage defines the persistence contracts the services are built
// against. internal/storage/postgres is the production implementation;
// internal/storage/memory backs the tests.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
)

type UserStore interface {
	// CreateUser persists a new user. Returns domain.ErrEmailTaken when an
	// account with that email (case-insensitive) already exists.
	CreateUser(ctx context.Context, user *domain.User) error

	// UserByEmail resolves a user by case-insensitive email.
	// Returns domain.ErrNotFound when no account matches.
	UserByEmail(ctx context.Context, email string) (*domain.User, error)

	// UserByID resolves a user by id. Returns domain.ErrNotFound.
	UserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type TaskStore interface {
	// CreateTask persists a task and fills in its sequential ID.
	CreateTask(ctx context.Context, task *domain.Task) error

	// TasksByOwner lists the owner's tasks newest first, narrowed by filter.
	TasksByOwner(ctx context.Context, owner uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error)

	// TaskByID resolves a task by (id, owner) together. A task that exists
	// but belongs to someone else yields domain.ErrNotFound.
	TaskByID(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)

	// UpdateTask writes the task row matching (task.ID, task.UserID).
	// Returns domain.ErrNotFound when no row matches.
	UpdateTask(ctx context.Context, task *domain.Task) error

	// DeleteTask removes the task matching (id, owner).
	// Returns domain.ErrNotFound when no row matches.
	DeleteTask(ctx context.Context, owner uuid.UUID, id int64) error
}

type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error

	// ConversationByID resolves a conversation by id alone; callers compare
	// the owner and fold "missing" and "foreign" into one refusal.
	ConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)

	// ConversationsByOwner pages through the owner's conversations.
	ConversationsByOwner(ctx context.Context, owner uuid.UUID, offset, limit int) ([]domain.Conversation, error)

	// TouchConversation advances updated_at to the given instant.
	TouchConversation(ctx context.Context, id uuid.UUID, at time.Time) error

	// AppendMessage stores a message; messages are never updated or removed.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// MessagesByConversation returns the full history ordered by creation
	// time ascending.
	MessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}
