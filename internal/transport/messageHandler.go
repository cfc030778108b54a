package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/ds124wfegd/learnlink/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.ListConversations(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, conversations)
}

func (h *MessageHandler) StartConversation(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conversation, err := h.messageService.StartConversation(c.Request.Context(), p, req.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, conversation)
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	var before int64
	if raw := c.Query("before"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, entity.Invalidf("invalid before"))
			return
		}
		before = v
	}

	messages, err := h.messageService.ListMessages(c.Request.Context(), p, id, limit, before)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, messages)
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), p, id, req.Body)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, msg)
}
