package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/metrics"
)

// Turn is one message of the conversation history the client echoes back.
type Turn struct {
	Text   string `json:"text"`
	IsUser bool   `json:"is_user"`
}

// Responder handles messages outside the booking flow.
type Responder interface {
	Respond(ctx context.Context, message string, history []Turn) (string, error)
}

const (
	msgEmptyMessage   = "Por favor, escribe tu pregunta para poder ayudarte."
	msgAssistantError = "Lo siento, ha ocurrido un error. Por favor, intenta de nuevo más tarde."
)

// Dispatcher routes each incoming message: an in-progress booking dialogue
// continues unconditionally; otherwise intent classification decides between
// starting a booking and the free-form assistant.
type Dispatcher struct {
	codec      *Codec
	flow       *Flow
	classifier IntentClassifier
	responder  Responder
	sink       metrics.Sink
	logger     *zap.Logger
}

func NewDispatcher(codec *Codec, flow *Flow, classifier IntentClassifier, responder Responder, sink metrics.Sink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		codec:      codec,
		flow:       flow,
		classifier: classifier,
		responder:  responder,
		sink:       sink,
		logger:     logger,
	}
}

// Handle produces the reply for one message. Every failure path maps to a
// natural-language message; the caller never sees an error.
func (d *Dispatcher) Handle(ctx context.Context, message string, history []Turn) string {
	if message == "" {
		return msgEmptyMessage
	}

	// A decodable non-initial session in the latest bot turn continues the
	// dialogue regardless of what the message says. An undecodable or
	// tampered fragment is session loss, not an error.
	if s := d.lastSession(history); s != nil && s.Step != StepInitial {
		return d.runFlow(ctx, message, s)
	}

	if d.classifier.Classify(message) == IntentBooking {
		return d.runFlow(ctx, message, &Session{Step: StepInitial})
	}

	d.sink.MessageHandled(metrics.RouteAssistant)
	reply, err := d.responder.Respond(ctx, message, stripHistory(history))
	if err != nil {
		d.logger.Error("assistant failed", zap.Error(err))
		return msgAssistantError
	}
	return reply
}

func (d *Dispatcher) runFlow(ctx context.Context, message string, s *Session) string {
	d.sink.MessageHandled(metrics.RouteBooking)

	reply, terminal := d.flow.Step(ctx, message, s)
	if terminal {
		return reply
	}

	out, err := d.codec.Encode(reply, s)
	if err != nil {
		// Without the fragment the dialogue cannot resume next turn.
		d.logger.Error("session encode failed", zap.Error(err))
		return msgAssistantError
	}
	return out
}

// lastSession decodes the session from the most recent bot turn. Only that
// turn counts: older fragments belong to a dialogue that already ended with
// a terminal reply (which carries none).
func (d *Dispatcher) lastSession(history []Turn) *Session {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsUser {
			continue
		}
		s, ok := d.codec.Decode(history[i].Text)
		if !ok {
			return nil
		}
		return s
	}
	return nil
}

// stripHistory removes state fragments before the history reaches the
// language model.
func stripHistory(history []Turn) []Turn {
	out := make([]Turn, 0, len(history))
	for _, t := range history {
		t.Text = StripFragment(t.Text)
		out = append(out, t)
	}
	return out
}
