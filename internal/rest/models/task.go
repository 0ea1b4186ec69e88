package models

import (
	"time"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
)

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTask(t *domain.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTaskList(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTask(&tasks[i]))
	}
	return out
}

type TaskListResponse struct {
	Success bool   `json:"success"`
	Data    []Task `json:"data"`
}

type TaskUpdateResponse struct {
	Success bool `json:"success"`
	Data    Task `json:"data"`
}

type TaskDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
