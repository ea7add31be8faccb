package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ingenieria-ia/booking-chat-backend/internal/chat"
)

type Handler struct {
	dispatcher *chat.Dispatcher
}

func NewHandler(dispatcher *chat.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply := h.dispatcher.Handle(c.Request.Context(), strings.TrimSpace(req.Message), req.History)
	c.JSON(http.StatusOK, ChatResponse{Response: reply})
}
