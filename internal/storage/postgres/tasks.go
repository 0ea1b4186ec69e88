package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/storage"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

var _ storage.TaskStore = (*TaskRepository)(nil)

func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, task.UserID, task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt).Scan(&task.ID)
}

func (r *TaskRepository) TasksByOwner(ctx context.Context, owner uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
	query := `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
	`
	switch filter {
	case domain.FilterCompleted:
		query += " AND completed = TRUE"
	case domain.FilterPending:
		query += " AND completed = FALSE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) TaskByID(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, owner).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task *domain.Task) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, completed = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`, task.ID, task.UserID, task.Title, task.Description, task.Completed, task.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, owner uuid.UUID, id int64) error {
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND user_id = $2
	`, id, owner)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
