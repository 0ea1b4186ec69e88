// Package memory is a mutex-guarded in-memory implementation of the storage
// contracts. It backs the package tests and is handy for running the server
// without Postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/storage"
)

type Storage struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]domain.User
	tasks         map[int64]domain.Task
	nextTaskID    int64
	conversations map[uuid.UUID]domain.Conversation
	messages      map[uuid.UUID][]domain.Message
}

func New() *Storage {
	return &Storage{
		users:         make(map[uuid.UUID]domain.User),
		tasks:         make(map[int64]domain.Task),
		nextTaskID:    1,
		conversations: make(map[uuid.UUID]domain.Conversation),
		messages:      make(map[uuid.UUID][]domain.Message),
	}
}

var (
	_ storage.UserStore         = (*Storage)(nil)
	_ storage.TaskStore         = (*Storage)(nil)
	_ storage.ConversationStore = (*Storage)(nil)
)

func (s *Storage) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Storage) UserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := u
	return &out, nil
}

// DeleteUser exists so tests can exercise tokens whose subject vanished.
func (s *Storage) DeleteUser(_ context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *Storage) CreateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextTaskID
	s.nextTaskID++
	s.tasks[task.ID] = *task
	return nil
}

func (s *Storage) TasksByOwner(_ context.Context, owner uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []domain.Task
	for _, t := range s.tasks {
		if t.UserID != owner {
			continue
		}
		if filter == domain.FilterCompleted && !t.Completed {
			continue
		}
		if filter == domain.FilterPending && t.Completed {
			continue
		}
		tasks = append(tasks, t)
	}
	// Newest first; sequential ids break ties between equal timestamps.
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Storage) TaskByID(_ context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != owner {
		return nil, domain.ErrNotFound
	}
	out := t
	return &out, nil
}

func (s *Storage) UpdateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, owner uuid.UUID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != owner {
		return domain.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Storage) CreateConversation(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.ID] = *conv
	return nil
}

func (s *Storage) ConversationByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *Storage) ConversationsByOwner(_ context.Context, owner uuid.UUID, offset, limit int) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var convs []domain.Conversation
	for _, c := range s.conversations {
		if c.UserID == owner {
			convs = append(convs, c)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	if offset >= len(convs) {
		return nil, nil
	}
	convs = convs[offset:]
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

func (s *Storage) TouchConversation(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.UpdatedAt = at
	s.conversations[id] = c
	return nil
}

func (s *Storage) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], *msg)
	return nil
}

func (s *Storage) MessagesByConversation(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
