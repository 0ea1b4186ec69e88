package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a todo item owned by exactly one user. Every read and write is
// filtered by (ID, UserID) together; a task id alone never resolves across
// users.
type Task struct {
	ID          int64
	UserID      uuid.UUID
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter narrows a task listing by completion status.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterCompleted TaskFilter = "completed"
	FilterPending   TaskFilter = "pending"
)

// ParseTaskFilter maps a raw filter string onto a TaskFilter, defaulting
// empty input to FilterAll.
func ParseTaskFilter(s string) (TaskFilter, bool) {
	switch TaskFilter(s) {
	case FilterCompleted:
		return FilterCompleted, true
	case FilterPending:
		return FilterPending, true
	case FilterAll, "":
		return FilterAll, true
	default:
		return FilterAll, false
	}
}

// TaskPatch carries the fields of a partial task update. Nil fields are left
// untouched; PUT and PATCH share these semantics.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}
