package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/storage/memory"
)

func TestCreateTaskAssignsSequentialIDs(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	owner := uuid.New()

	for i := int64(1); i <= 3; i++ {
		task := &domain.Task{UserID: owner, Title: "t"}
		require.NoError(t, store.CreateTask(ctx, task))
		assert.Equal(t, i, task.ID)
	}
}

func TestTasksByOwner_NewestFirst(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	owner := uuid.New()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateTask(ctx, &domain.Task{
			UserID:    owner,
			Title:     "t",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	tasks, err := store.TasksByOwner(ctx, owner, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestTasksByOwner_EqualTimestampsTieBreakByID(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	owner := uuid.New()

	// Identical created_at, as happens when tasks are created within one
	// clock tick.
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateTask(ctx, &domain.Task{UserID: owner, Title: "t", CreatedAt: now}))
	}

	tasks, err := store.TasksByOwner(ctx, owner, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestConversationsByOwner_Paging(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	owner := uuid.New()

	base := time.Now().UTC()
	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, store.CreateConversation(ctx, &domain.Conversation{
			ID:        ids[i],
			UserID:    owner,
			CreatedAt: base,
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// Most recently updated first.
	convs, err := store.ConversationsByOwner(ctx, owner, 0, 10)
	require.NoError(t, err)
	require.Len(t, convs, 3)
	assert.Equal(t, ids[2], convs[0].ID)

	convs, err = store.ConversationsByOwner(ctx, owner, 1, 1)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, ids[1], convs[0].ID)

	// Touching an older conversation moves it to the front.
	require.NoError(t, store.TouchConversation(ctx, ids[0], base.Add(time.Hour)))
	convs, err = store.ConversationsByOwner(ctx, owner, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, ids[0], convs[0].ID)

	// Offset past the end yields an empty page.
	convs, err = store.ConversationsByOwner(ctx, owner, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestMessagesOrderedByCreation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	owner := uuid.New()
	convID := uuid.New()

	require.NoError(t, store.CreateConversation(ctx, &domain.Conversation{ID: convID, UserID: owner}))

	base := time.Now().UTC()
	contents := []string{"first", "second", "third"}
	for i, content := range contents {
		require.NoError(t, store.AppendMessage(ctx, &domain.Message{
			ID:             uuid.New(),
			ConversationID: convID,
			UserID:         owner,
			Role:           domain.RoleUser,
			Content:        content,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	msgs, err := store.MessagesByConversation(ctx, convID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, content := range contents {
		assert.Equal(t, content, msgs[i].Content)
	}
}
