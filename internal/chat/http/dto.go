package http

import (
	"github.com/ingenieria-ia/booking-chat-backend/internal/chat"
)

// ChatRequest is one turn of the conversation. The history is everything the
// client has seen so far, bot turns included verbatim so embedded state
// fragments round-trip.
type ChatRequest struct {
	Message string      `json:"message" binding:"required"`
	History []chat.Turn `json:"conversation_history"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
