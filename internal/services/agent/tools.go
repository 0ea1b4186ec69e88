package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/clients/llm"
	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	taskssvc "github.com/markgregr/todoAgent_REST_server/internal/services/tasks"
)

// ToolName enumerates the closed set of operations the model may invoke.
// Dispatch switches over it exhaustively; there is no runtime registry.
type ToolName string

const (
	ToolAddTask      ToolName = "add_task"
	ToolListTasks    ToolName = "list_tasks"
	ToolCompleteTask ToolName = "complete_task"
	ToolUpdateTask   ToolName = "update_task"
	ToolDeleteTask   ToolName = "delete_task"
)

// FlexID is a task id that models emit either as a JSON string or a number.
type FlexID int64

func (f *FlexID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		var err error
		s, err = strconv.Unquote(s)
		if err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", s)
	}
	*f = FlexID(n)
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(f), 10))
}

// Arguments is the union of all tool parameters. The orchestrator always
// overwrites UserID with the authenticated caller's id before dispatching,
// regardless of what the model supplied.
type Arguments struct {
	UserID      string  `json:"user_id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	TaskID      *FlexID `json:"task_id,omitempty"`
	Filter      string  `json:"filter,omitempty"`
}

// Result is the uniform tool envelope. Dispatch never returns a Go error:
// the conversational caller always receives structured feedback.
type Result struct {
	Success bool   `json:"success"`
	Payload any    `json:"payload"`
	Message string `json:"message"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// taskPayload is the task shape embedded in tool results.
type taskPayload struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toTaskPayload(t *domain.Task) taskPayload {
	return taskPayload{
		ID:          strconv.FormatInt(t.ID, 10),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Dispatcher maps the tool catalog onto the task service. It is shared in
// spirit with the REST handlers: both converge on the same tasks.Service.
type Dispatcher struct {
	log   *logrus.Entry
	tasks *taskssvc.Service
}

func NewDispatcher(log *logrus.Logger, tasks *taskssvc.Service) *Dispatcher {
	return &Dispatcher{
		log:   logrus.NewEntry(log),
		tasks: tasks,
	}
}

// Dispatch executes one named operation. Every failure mode — malformed
// owner id, missing task id, validation, not-found, unknown tool — becomes a
// Result with Success=false.
func (d *Dispatcher) Dispatch(ctx context.Context, name ToolName, args Arguments) Result {
	const op = "agent.Dispatcher.Dispatch"
	log := d.log.WithField("operation", op).WithField("tool", string(name))

	owner, err := uuid.Parse(args.UserID)
	if err != nil {
		return failure("invalid user id %q", args.UserID)
	}

	switch name {
	case ToolAddTask:
		return d.addTask(ctx, owner, args)
	case ToolListTasks:
		return d.listTasks(ctx, owner, args)
	case ToolCompleteTask:
		return d.completeTask(ctx, owner, args)
	case ToolUpdateTask:
		return d.updateTask(ctx, owner, args)
	case ToolDeleteTask:
		return d.deleteTask(ctx, owner, args)
	default:
		log.Warn("unknown tool requested")
		return failure("tool %q not found", string(name))
	}
}

func (d *Dispatcher) addTask(ctx context.Context, owner uuid.UUID, args Arguments) Result {
	if args.Title == nil {
		return failure("failed to create task: title is required")
	}
	task, err := d.tasks.Create(ctx, owner, *args.Title, args.Description)
	if err != nil {
		return failure("failed to create task: %s", toolError(err))
	}
	return Result{
		Success: true,
		Payload: toTaskPayload(task),
		Message: fmt.Sprintf("Task '%s' created successfully", task.Title),
	}
}

func (d *Dispatcher) listTasks(ctx context.Context, owner uuid.UUID, args Arguments) Result {
	filter, ok := domain.ParseTaskFilter(args.Filter)
	if !ok {
		return failure("invalid filter %q: expected all, completed or pending", args.Filter)
	}
	tasks, err := d.tasks.List(ctx, owner, filter)
	if err != nil {
		return failure("failed to retrieve tasks: %s", toolError(err))
	}
	payload := make([]taskPayload, 0, len(tasks))
	for i := range tasks {
		payload = append(payload, toTaskPayload(&tasks[i]))
	}
	return Result{
		Success: true,
		Payload: payload,
		Message: fmt.Sprintf("Retrieved %d tasks for user", len(payload)),
	}
}

func (d *Dispatcher) completeTask(ctx context.Context, owner uuid.UUID, args Arguments) Result {
	if args.TaskID == nil {
		return failure("failed to complete task: task_id is required")
	}
	task, err := d.tasks.Complete(ctx, owner, int64(*args.TaskID))
	if err != nil {
		return failure("failed to complete task: %s", toolError(err))
	}
	return Result{
		Success: true,
		Payload: toTaskPayload(task),
		Message: fmt.Sprintf("Task '%s' marked as completed", task.Title),
	}
}

func (d *Dispatcher) updateTask(ctx context.Context, owner uuid.UUID, args Arguments) Result {
	if args.TaskID == nil {
		return failure("failed to update task: task_id is required")
	}
	task, err := d.tasks.Update(ctx, owner, int64(*args.TaskID), domain.TaskPatch{
		Title:       args.Title,
		Description: args.Description,
		Completed:   args.Completed,
	})
	if err != nil {
		return failure("failed to update task: %s", toolError(err))
	}
	return Result{
		Success: true,
		Payload: toTaskPayload(task),
		Message: fmt.Sprintf("Task '%s' updated successfully", task.Title),
	}
}

func (d *Dispatcher) deleteTask(ctx context.Context, owner uuid.UUID, args Arguments) Result {
	if args.TaskID == nil {
		return failure("failed to delete task: task_id is required")
	}
	if err := d.tasks.Delete(ctx, owner, int64(*args.TaskID)); err != nil {
		return failure("failed to delete task: %s", toolError(err))
	}
	return Result{Success: true, Message: "Task deleted successfully"}
}

func toolError(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "task not found"
	case errors.As(err, &verr):
		return verr.Error()
	default:
		return "internal error"
	}
}

// Catalog publishes the fixed tool schemas sent to the model with every
// chat turn.
func Catalog() []llm.Tool {
	userID := map[string]any{"type": "string", "description": "The ID of the user who owns the task"}
	taskID := map[string]any{"type": "string", "description": "The ID of the task"}

	return []llm.Tool{
		{
			Type: "function",
			Function: llm.Function{
				Name:        string(ToolAddTask),
				Description: "Create a new task",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"user_id":     map[string]any{"type": "string", "description": "The ID of the user creating the task"},
						"title":       map[string]any{"type": "string", "description": "The title of the task"},
						"description": map[string]any{"type": "string", "description": "Optional detailed description of the task"},
					},
					"required": []string{"user_id", "title"},
				},
			},
		},
		{
			Type: "function",
			Function: llm.Function{
				Name:        string(ToolListTasks),
				Description: "Retrieve all tasks for the user",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"user_id": map[string]any{"type": "string", "description": "The ID of the user whose tasks to retrieve"},
						"filter": map[string]any{
							"type":        "string",
							"enum":        []string{"all", "completed", "pending"},
							"description": "Filter for task completion status",
							"default":     "all",
						},
					},
					"required": []string{"user_id"},
				},
			},
		},
		{
			Type: "function",
			Function: llm.Function{
				Name:        string(ToolCompleteTask),
				Description: "Mark a task as completed",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"user_id": userID,
						"task_id": map[string]any{"type": "string", "description": "The ID of the task to mark as completed"},
					},
					"required": []string{"user_id", "task_id"},
				},
			},
		},
		{
			Type: "function",
			Function: llm.Function{
				Name:        string(ToolUpdateTask),
				Description: "Update the details of a task",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"user_id":     userID,
						"task_id":     map[string]any{"type": "string", "description": "The ID of the task to update"},
						"title":       map[string]any{"type": "string", "description": "New title for the task (optional)"},
						"description": map[string]any{"type": "string", "description": "New description for the task (optional)"},
						"completed":   map[string]any{"type": "boolean", "description": "New completion status for the task (optional)"},
					},
					"required": []string{"user_id", "task_id"},
				},
			},
		},
		{
			Type: "function",
			Function: llm.Function{
				Name:        string(ToolDeleteTask),
				Description: "Delete a task",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"user_id": userID,
						"task_id": taskID,
					},
					"required": []string{"user_id", "task_id"},
				},
			},
		},
	}
}
