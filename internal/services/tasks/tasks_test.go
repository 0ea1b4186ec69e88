package tasks_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/services/tasks"
	"github.com/markgregr/todoAgent_REST_server/internal/storage/memory"
)

func newService(t *testing.T) *tasks.Service {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return tasks.New(log, memory.New())
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, "  buy milk  ", strPtr("2 liters"))
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, "2 liters", *task.Description)
	assert.False(t, task.Completed)
	assert.NotZero(t, task.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.Create(ctx, owner, "   ", nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	_, err = svc.Create(ctx, owner, strings.Repeat("x", 201), nil)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	_, err = svc.Create(ctx, owner, "ok", strPtr(strings.Repeat("x", 1001)))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "description")

	// Boundary lengths are accepted.
	_, err = svc.Create(ctx, owner, strings.Repeat("x", 200), strPtr(strings.Repeat("x", 1000)))
	require.NoError(t, err)
}

func TestCreate_LimitsCountCharactersNotBytes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	// 150 Cyrillic characters take 300 bytes but stay within the 200-char
	// title limit.
	task, err := svc.Create(ctx, owner, strings.Repeat("я", 150), strPtr(strings.Repeat("я", 1000)))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("я", 150), task.Title)

	_, err = svc.Create(ctx, owner, strings.Repeat("я", 201), nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	_, err = svc.Create(ctx, owner, "ok", strPtr(strings.Repeat("я", 1001)))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "description")
}

func TestList_OrderAndFilter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	t1, err := svc.Create(ctx, owner, "first", nil)
	require.NoError(t, err)
	t2, err := svc.Create(ctx, owner, "second", nil)
	require.NoError(t, err)
	t3, err := svc.Create(ctx, owner, "third", nil)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, owner, t2.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, owner, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{t3.ID, t2.ID, t1.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	completed, err := svc.List(ctx, owner, domain.FilterCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, t2.ID, completed[0].ID)

	pending, err := svc.List(ctx, owner, domain.FilterPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
}

func TestUpdate_Partial(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, "draft report", strPtr("for monday"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, task.ID, domain.TaskPatch{Title: strPtr("final report")})
	require.NoError(t, err)
	assert.Equal(t, "final report", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "for monday", *updated.Description)
	assert.False(t, updated.Completed)
	assert.False(t, updated.UpdatedAt.Before(task.CreatedAt))

	done := true
	updated, err = svc.Update(ctx, owner, task.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "final report", updated.Title)
}

func TestUpdate_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, "valid", nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, task.ID, domain.TaskPatch{Title: strPtr("   ")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	// Failed update leaves the task untouched.
	got, err := svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "valid", got.Title)
}

func TestForeignTasksAreInvisible(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	task, err := svc.Create(ctx, owner, "private", nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, stranger, task.ID, domain.TaskPatch{Title: strPtr("stolen")})
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, stranger, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Owner still sees the original.
	got, err := svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, "temp", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, task.ID))

	_, err = svc.Get(ctx, owner, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, owner, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
