package handler

import (
	"errors"
	"net/http"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/dmarzano/superquote/internal/metrics"
	"github.com/dmarzano/superquote/internal/parser"
	"github.com/dmarzano/superquote/internal/service"
	"github.com/gin-gonic/gin"
)

// MessageHandler turns inbound chat messages into ledger commands.
type MessageHandler struct {
	ledger *service.LedgerService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(ledger *service.LedgerService) *MessageHandler {
	return &MessageHandler{ledger: ledger}
}

// HandleMessage godoc
// POST /api/messages
// Body: {"conversation_id":"group-1","user_id":42,"username":"marco","text":"SQ-1MILAN-2.00-10.00-VINTA"}
//
// Non-command messages are acknowledged with 204 so the caller can relay
// every group message without filtering first.
func (h *MessageHandler) HandleMessage(c *gin.Context) {
	// user_id is an opaque numeric identity; 0 is as valid as any other
	// value, so it carries no required binding.
	var body struct {
		ConversationID string `json:"conversation_id" binding:"required"`
		UserID         int64  `json:"user_id"`
		Username       string `json:"username"        binding:"required"`
		Text           string `json:"text"            binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	cmd, err := parser.Parse(body.Text)
	if err != nil {
		if errors.Is(err, parser.ErrNotACommand) {
			metrics.MessagesTotal.WithLabelValues("not_a_command").Inc()
			c.Status(http.StatusNoContent)
			return
		}
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			metrics.MessagesTotal.WithLabelValues("parse_error").Inc()
			respondReply(c, "parse_error", renderParseError(pe))
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not parse message")
		return
	}

	actor := domain.Actor{
		DisplayName:    body.Username,
		UserID:         body.UserID,
		ConversationID: body.ConversationID,
	}
	res := h.ledger.Execute(c.Request.Context(), cmd, actor)
	metrics.MessagesTotal.WithLabelValues(string(res.Kind)).Inc()
	respondReply(c, string(res.Kind), renderResult(res))
}
