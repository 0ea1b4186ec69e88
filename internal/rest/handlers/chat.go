package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	chatform "github.com/markgregr/todoAgent_REST_server/internal/rest/forms/chat"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/middleware"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/models"
	agentsvc "github.com/markgregr/todoAgent_REST_server/internal/services/agent"
	"github.com/markgregr/todoAgent_REST_server/pkg/rest/response"
)

type Chat struct {
	log   *logrus.Entry
	agent *agentsvc.Service
}

func NewChatHandler(agent *agentsvc.Service, log *logrus.Logger) *Chat {
	return &Chat{
		log:   logrus.NewEntry(log),
		agent: agent,
	}
}

func (h *Chat) EnrichRoutes(router *gin.Engine, authenticate gin.HandlerFunc) {
	chatRoutes := router.Group("/api/:userID", authenticate)
	chatRoutes.POST("/chat", h.sendMessageAction)
	chatRoutes.GET("/conversations", h.listConversationsAction)
	chatRoutes.GET("/conversations/:conversationID", h.conversationHistoryAction)
}

func (h *Chat) sendMessageAction(c *gin.Context) {
	const op = "handlers.Chat.sendMessageAction"
	log := h.log.WithField("operation", op)
	log.Info("send chat message")

	form, verr := chatform.NewSendMessageForm().ParseAndValidate(c)
	if verr != nil {
		response.HandleError(verr, c)
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	pathUserID, ok := parseUserID(c)
	if !ok {
		return
	}

	f := form.(*chatform.SendMessageForm)
	var conversationID *uuid.UUID
	if f.ConversationID != nil {
		parsed, err := uuid.Parse(*f.ConversationID)
		if err != nil {
			response.HandleError(response.NewBadRequestError("invalid conversation_id"), c)
			return
		}
		conversationID = &parsed
	}

	turn, err := h.agent.Chat(c.Request.Context(), user, pathUserID, f.Message, conversationID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to run chat turn", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Response:       turn.Response,
		ConversationID: turn.ConversationID.String(),
		ToolCalls:      turn.ToolCalls,
	})
}

func (h *Chat) listConversationsAction(c *gin.Context) {
	const op = "handlers.Chat.listConversationsAction"
	log := h.log.WithField("operation", op)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	pathUserID, ok := parseUserID(c)
	if !ok {
		return
	}

	skip := parseQueryInt(c, "skip", 0)
	limit := parseQueryInt(c, "limit", 0)

	list, err := h.agent.Conversations(c.Request.Context(), user, pathUserID, skip, limit)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to list conversations", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.NewConversationList(list))
}

func (h *Chat) conversationHistoryAction(c *gin.Context) {
	const op = "handlers.Chat.conversationHistoryAction"
	log := h.log.WithField("operation", op)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	pathUserID, ok := parseUserID(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("conversationID"))
	if err != nil {
		response.HandleError(response.NewBadRequestError("invalid conversation_id"), c)
		return
	}

	conv, history, err := h.agent.History(c.Request.Context(), user, pathUserID, conversationID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load conversation history", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.NewConversationHistory(conv, history))
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.HandleError(response.NewBadRequestError("invalid user id"), c)
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
