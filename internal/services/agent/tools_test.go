package agent_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgregr/todoAgent_REST_server/internal/services/agent"
	taskssvc "github.com/markgregr/todoAgent_REST_server/internal/services/tasks"
	"github.com/markgregr/todoAgent_REST_server/internal/storage/memory"
)

func newDispatcher(t *testing.T) (*agent.Dispatcher, *taskssvc.Service) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	tasks := taskssvc.New(log, memory.New())
	return agent.NewDispatcher(log, tasks), tasks
}

func strPtr(s string) *string { return &s }

func flexID(n int64) *agent.FlexID {
	f := agent.FlexID(n)
	return &f
}

func TestDispatch_AddAndList(t *testing.T) {
	d, _ := newDispatcher(t)
	ctx := context.Background()
	owner := uuid.New().String()

	res := d.Dispatch(ctx, agent.ToolAddTask, agent.Arguments{
		UserID: owner,
		Title:  strPtr("walk the dog"),
	})
	require.True(t, res.Success)
	assert.Equal(t, "Task 'walk the dog' created successfully", res.Message)

	res = d.Dispatch(ctx, agent.ToolListTasks, agent.Arguments{UserID: owner})
	require.True(t, res.Success)
	assert.Equal(t, "Retrieved 1 tasks for user", res.Message)
}

func TestDispatch_CompleteAndFilter(t *testing.T) {
	d, tasks := newDispatcher(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := tasks.Create(ctx, owner, "write tests", nil)
	require.NoError(t, err)
	_, err = tasks.Create(ctx, owner, "review code", nil)
	require.NoError(t, err)

	res := d.Dispatch(ctx, agent.ToolCompleteTask, agent.Arguments{
		UserID: owner.String(),
		TaskID: flexID(task.ID),
	})
	require.True(t, res.Success)
	assert.Equal(t, "Task 'write tests' marked as completed", res.Message)

	res = d.Dispatch(ctx, agent.ToolListTasks, agent.Arguments{UserID: owner.String(), Filter: "pending"})
	require.True(t, res.Success)
	assert.Equal(t, "Retrieved 1 tasks for user", res.Message)

	res = d.Dispatch(ctx, agent.ToolListTasks, agent.Arguments{UserID: owner.String(), Filter: "completed"})
	require.True(t, res.Success)
	assert.Equal(t, "Retrieved 1 tasks for user", res.Message)

	res = d.Dispatch(ctx, agent.ToolListTasks, agent.Arguments{UserID: owner.String(), Filter: "someday"})
	assert.False(t, res.Success)
}

func TestDispatch_UpdateAndDelete(t *testing.T) {
	d, tasks := newDispatcher(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := tasks.Create(ctx, owner, "old title", nil)
	require.NoError(t, err)

	res := d.Dispatch(ctx, agent.ToolUpdateTask, agent.Arguments{
		UserID: owner.String(),
		TaskID: flexID(task.ID),
		Title:  strPtr("new title"),
	})
	require.True(t, res.Success)
	assert.Equal(t, "Task 'new title' updated successfully", res.Message)

	res = d.Dispatch(ctx, agent.ToolDeleteTask, agent.Arguments{
		UserID: owner.String(),
		TaskID: flexID(task.ID),
	})
	require.True(t, res.Success)
	assert.Equal(t, "Task deleted successfully", res.Message)

	res = d.Dispatch(ctx, agent.ToolDeleteTask, agent.Arguments{
		UserID: owner.String(),
		TaskID: flexID(task.ID),
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "task not found")
}

func TestDispatch_Failures(t *testing.T) {
	d, _ := newDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, agent.ToolAddTask, agent.Arguments{UserID: "not-a-uuid", Title: strPtr("x")})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid user id")

	owner := uuid.New().String()

	res = d.Dispatch(ctx, agent.ToolAddTask, agent.Arguments{UserID: owner})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "title is required")

	res = d.Dispatch(ctx, agent.ToolCompleteTask, agent.Arguments{UserID: owner})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "task_id is required")

	res = d.Dispatch(ctx, agent.ToolName("drop_database"), agent.Arguments{UserID: owner})
	assert.False(t, res.Success)
	assert.Equal(t, `tool "drop_database" not found`, res.Message)
}

func TestFlexID_JSON(t *testing.T) {
	var args agent.Arguments

	require.NoError(t, json.Unmarshal([]byte(`{"task_id": "42"}`), &args))
	require.NotNil(t, args.TaskID)
	assert.Equal(t, agent.FlexID(42), *args.TaskID)

	require.NoError(t, json.Unmarshal([]byte(`{"task_id": 7}`), &args))
	assert.Equal(t, agent.FlexID(7), *args.TaskID)

	require.Error(t, json.Unmarshal([]byte(`{"task_id": "seven"}`), &args))

	encoded, err := json.Marshal(agent.Arguments{UserID: "u", TaskID: flexID(42)})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"task_id":"42"`)
}

func TestCatalog(t *testing.T) {
	catalog := agent.Catalog()
	require.Len(t, catalog, 5)

	names := make([]string, 0, len(catalog))
	for _, tool := range catalog {
		assert.Equal(t, "function", tool.Type)
		names = append(names, tool.Function.Name)
	}
	assert.Equal(t, []string{"add_task", "list_tasks", "complete_task", "update_task", "delete_task"}, names)
}
