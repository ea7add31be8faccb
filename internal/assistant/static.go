package assistant

import (
	"context"

	"github.com/ingenieria-ia/booking-chat-backend/internal/chat"
)

// Static is the responder used when no Gemini API key is configured. It
// answers every free-form message with a fixed orientation text so the
// booking flow keeps working in minimal deployments.
type Static struct{}

func (Static) Respond(context.Context, string, []chat.Turn) (string, error) {
	return "Soy el asistente de KIT CONSULTING. Puedo ayudarte con información sobre " +
		"nuestros servicios de Inteligencia Artificial, Ventas Digitales y Estrategia " +
		"de Negocio.\n\nSi lo prefieres, escribe 'quiero agendar una cita' y te guiaré " +
		"paso a paso.", nil
}
