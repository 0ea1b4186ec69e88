// Package tasks enforces per-user ownership on all task reads and writes.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/storage"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

type Service struct {
	log   *logrus.Entry
	store storage.TaskStore
}

func New(log *logrus.Logger, store storage.TaskStore) *Service {
	return &Service{
		log:   logrus.NewEntry(log),
		store: store,
	}
}

// List returns the owner's tasks newest first, narrowed by filter.
func (s *Service) List(ctx context.Context, owner uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
	const op = "tasks.Service.List"

	tasks, err := s.store.TasksByOwner(ctx, owner, filter)
	if err != nil {
		s.log.WithError(err).Errorf("%s: failed to list tasks", op)
		return nil, err
	}
	return tasks, nil
}

// Create validates the title and description and persists a new, uncompleted
// task for the owner.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, title string, description *string) (*domain.Task, error) {
	const op = "tasks.Service.Create"

	title = strings.TrimSpace(title)
	if verr := validateFields(&title, description); verr != nil {
		return nil, verr
	}

	now := time.Now().UTC()
	task := &domain.Task{
		UserID:      owner,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		s.log.WithError(err).Errorf("%s: failed to create task", op)
		return nil, err
	}
	return task, nil
}

// Get resolves a task by (id, owner). Foreign tasks are reported as missing.
func (s *Service) Get(ctx context.Context, owner uuid.UUID, taskID int64) (*domain.Task, error) {
	const op = "tasks.Service.Get"

	task, err := s.store.TaskByID(ctx, owner, taskID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).Errorf("%s: failed to get task", op)
		}
		return nil, err
	}
	return task, nil
}

// Update applies only the non-nil fields of the patch and refreshes
// updated_at. PUT and PATCH share these partial semantics.
func (s *Service) Update(ctx context.Context, owner uuid.UUID, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	const op = "tasks.Service.Update"

	task, err := s.store.TaskByID(ctx, owner, taskID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).Errorf("%s: failed to resolve task", op)
		}
		return nil, err
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if verr := validateFields(patch.Title, patch.Description); verr != nil {
		return nil, verr
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).Errorf("%s: failed to update task", op)
		}
		return nil, err
	}
	return task, nil
}

// Complete marks a task done. Convenience over Update for the tool catalog.
func (s *Service) Complete(ctx context.Context, owner uuid.UUID, taskID int64) (*domain.Task, error) {
	done := true
	return s.Update(ctx, owner, taskID, domain.TaskPatch{Completed: &done})
}

// Delete removes the task matching (id, owner).
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, taskID int64) error {
	const op = "tasks.Service.Delete"

	if err := s.store.DeleteTask(ctx, owner, taskID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).Errorf("%s: failed to delete task", op)
		}
		return err
	}
	return nil
}

// validateFields checks title and description limits. Nil means the field is
// not being set. Limits count characters, not bytes.
func validateFields(title *string, description *string) *domain.ValidationError {
	verr := domain.NewValidationError()
	if title != nil {
		if *title == "" {
			verr.Set("title", "title is required")
		} else if utf8.RuneCountInString(*title) > maxTitleLength {
			verr.Set("title", fmt.Sprintf("title must be %d characters or less", maxTitleLength))
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		verr.Set("description", fmt.Sprintf("description must be %d characters or less", maxDescriptionLength))
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
