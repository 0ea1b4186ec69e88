package chat

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/rest/forms"
	"github.com/markgregr/todoAgent_REST_server/pkg/rest/response"
)

type SendMessageRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

type SendMessageForm struct {
	Message        string
	ConversationID *string
}

func NewSendMessageForm() *SendMessageForm {
	return &SendMessageForm{}
}

func (f *SendMessageForm) ParseAndValidate(c *gin.Context) (forms.Former, response.Error) {
	body, err := io.ReadAll(c.Request.Body)
	defer c.Request.Body.Close()

	if err != nil {
		log.WithError(err).Error("unable to read body")
		return nil, response.NewInternalError()
	}

	var request *SendMessageRequest
	err = json.Unmarshal(body, &request)
	if err != nil || request == nil {
		ve := response.NewValidationError()
		ve.SetError(response.GeneralErrorKey, response.InvalidRequestStructure, "invalid request structure")

		return nil, ve
	}

	errors := make(map[string]response.ErrorMessage)
	f.validateAndSetMessage(request, errors)

	if len(errors) > 0 {
		return nil, response.NewValidationError(errors)
	}

	if request.ConversationID != nil && strings.TrimSpace(*request.ConversationID) != "" {
		f.ConversationID = request.ConversationID
	}

	return f, nil
}

func (f *SendMessageForm) ConvertToMap() map[string]interface{} {
	return map[string]interface{}{
		"message":         f.Message,
		"conversation_id": f.ConversationID,
	}
}

func (f *SendMessageForm) validateAndSetMessage(request *SendMessageRequest, errors map[string]response.ErrorMessage) {
	if strings.TrimSpace(request.Message) == "" {
		errors["message"] = response.ErrorMessage{
			Code:    response.MissedValue,
			Message: "missed value",
		}
		return
	}

	f.Message = request.Message
}
