package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgregr/todoAgent_REST_server/internal/rest/handlers"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/middleware"
	agentsvc "github.com/markgregr/todoAgent_REST_server/internal/services/agent"
	authsvc "github.com/markgregr/todoAgent_REST_server/internal/services/auth"
	taskssvc "github.com/markgregr/todoAgent_REST_server/internal/services/tasks"
	"github.com/markgregr/todoAgent_REST_server/internal/storage/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := memory.New()
	auth, err := authsvc.New(log, store, "test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	taskService := taskssvc.New(log, store)
	dispatcher := agentsvc.NewDispatcher(log, taskService)
	agent := agentsvc.New(log, store, dispatcher, nil)

	router := gin.New()
	authenticate := middleware.Authenticate(auth)
	handlers.NewHealthHandler().EnrichRoutes(router)
	handlers.NewAuthHandler(auth, log).EnrichRoutes(router)
	handlers.NewTaskHandler(taskService, log).EnrichRoutes(router, authenticate)
	handlers.NewChatHandler(agent, log).EnrichRoutes(router, authenticate)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerAndLogin creates a fresh user and returns its id and bearer token.
func registerAndLogin(t *testing.T, router *gin.Engine, email string) (string, string) {
	t.Helper()

	body := fmt.Sprintf(`{"email": %q, "password": "Password123!"}`, email)
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	token, _ := resp["access_token"].(string)
	require.NotEmpty(t, token)
	user, _ := resp["user"].(map[string]any)
	require.NotNil(t, user)
	id, _ := user["id"].(string)
	require.NotEmpty(t, id)
	return id, token
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	body := `{"email": "alice@example.com", "password": "Password123!"}`
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// Duplicate registration conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Weak passwords are a 400, not a 422.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", `{"email": "bob@example.com", "password": "short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", `{"email": "bob@example.com", "password": "password123!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "uppercase")

	// Missing fields fail schema validation.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", `{"email": "bob@example.com"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", `{"email": "alice@example.com", "password": "wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "bearer", resp["token_type"])
	assert.NotEmpty(t, resp["access_token"])

	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", "", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTasksRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tasks", "garbage-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskCRUD(t *testing.T) {
	router := newTestRouter(t)
	_, token := registerAndLogin(t, router, "carol@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/tasks", token, `{"title": "buy milk", "description": "2 liters"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["data"].(map[string]any)
	taskID := created["id"]
	assert.Equal(t, "buy milk", created["title"])
	assert.Equal(t, false, created["completed"])

	rec = doJSON(t, router, http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].([]any)
	require.Len(t, data, 1)

	path := fmt.Sprintf("/api/tasks/%v", taskID)

	rec = doJSON(t, router, http.MethodPatch, path, token, `{"completed": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["data"].(map[string]any)["completed"])

	rec = doJSON(t, router, http.MethodGet, "/api/tasks?status=pending", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])

	rec = doJSON(t, router, http.MethodPut, path, token, `{"title": "buy oat milk"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "buy oat milk", updated["title"])
	// PUT is partial: completed survives.
	assert.Equal(t, true, updated["completed"])

	rec = doJSON(t, router, http.MethodDelete, path, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, path, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskValidationAndMissing(t *testing.T) {
	router := newTestRouter(t)
	_, token := registerAndLogin(t, router, "dave@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/tasks", token, `{"description": "no title"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/tasks", token, `{"title": "   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	longTitle := strings.Repeat("x", 201)
	rec = doJSON(t, router, http.MethodPost, "/api/tasks", token, fmt.Sprintf(`{"title": %q}`, longTitle))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tasks/99999", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Non-numeric ids look exactly like missing tasks.
	rec = doJSON(t, router, http.MethodGet, "/api/tasks/not-a-number", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tasks?status=nonsense", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskIsolationBetweenUsers(t *testing.T) {
	router := newTestRouter(t)
	_, ownerToken := registerAndLogin(t, router, "erin@example.com")
	_, strangerToken := registerAndLogin(t, router, "frank@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/tasks", ownerToken, `{"title": "secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := decode(t, rec)["data"].(map[string]any)["id"]
	path := fmt.Sprintf("/api/tasks/%v", taskID)

	// Foreign tasks are indistinguishable from missing ones.
	rec = doJSON(t, router, http.MethodGet, path, strangerToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, path, strangerToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, path, ownerToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t)
	userID, token := registerAndLogin(t, router, "grace@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/"+userID+"/chat", token, `{"message": "add buy milk"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.NotEmpty(t, resp["response"])
	conversationID, _ := resp["conversation_id"].(string)
	require.NotEmpty(t, conversationID)

	// tool_calls is always an array in the body, never null.
	toolCalls, ok := resp["tool_calls"].([]any)
	require.True(t, ok, rec.Body.String())
	assert.Empty(t, toolCalls)

	// Follow-up in the same conversation.
	body := fmt.Sprintf(`{"message": "thanks", "conversation_id": %q}`, conversationID)
	rec = doJSON(t, router, http.MethodPost, "/api/"+userID+"/chat", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, conversationID, decode(t, rec)["conversation_id"])

	rec = doJSON(t, router, http.MethodGet, "/api/"+userID+"/conversations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/"+userID+"/conversations/"+conversationID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode(t, rec)
	msgs, _ := history["messages"].([]any)
	assert.Len(t, msgs, 4)

	// Blank message fails validation.
	rec = doJSON(t, router, http.MethodPost, "/api/"+userID+"/chat", token, `{"message": "   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Malformed conversation id is a bad request.
	rec = doJSON(t, router, http.MethodPost, "/api/"+userID+"/chat", token, `{"message": "hi", "conversation_id": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatForbiddenForOtherUsers(t *testing.T) {
	router := newTestRouter(t)
	ownerID, ownerToken := registerAndLogin(t, router, "heidi@example.com")
	_, strangerToken := registerAndLogin(t, router, "ivan@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/"+ownerID+"/chat", ownerToken, `{"message": "mine"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	conversationID := decode(t, rec)["conversation_id"].(string)

	// Posting to someone else's chat path is refused.
	rec = doJSON(t, router, http.MethodPost, "/api/"+ownerID+"/chat", strangerToken, `{"message": "theirs"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/"+ownerID+"/conversations", strangerToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/"+ownerID+"/conversations/"+conversationID, strangerToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
