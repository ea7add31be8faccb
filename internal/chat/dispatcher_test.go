package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/metrics"
)

type fakeResponder struct {
	reply   string
	err     error
	called  bool
	history []Turn
}

func (f *fakeResponder) Respond(_ context.Context, _ string, history []Turn) (string, error) {
	f.called = true
	f.history = history
	return f.reply, f.err
}

func newTestDispatcher(responder Responder) (*Dispatcher, *Codec) {
	codec := NewCodec("test-secret")
	flow := newTestFlow(defaultEngine(), &fakeBooker{})
	return NewDispatcher(codec, flow, NewPatternClassifier(), responder, metrics.Nop(), zap.NewNop()), codec
}

func TestBookingIntentStartsSession(t *testing.T) {
	d, codec := newTestDispatcher(&fakeResponder{})

	reply := d.Handle(context.Background(), "Quiero agendar una cita", nil)
	assert.Contains(t, reply, "nombre completo")

	s, ok := codec.Decode(reply)
	require.True(t, ok)
	assert.Equal(t, StepName, s.Step)
}

func TestFAQQuestionGoesToAssistant(t *testing.T) {
	responder := &fakeResponder{reply: "Necesitas al menos 10 empleados."}
	d, _ := newTestDispatcher(responder)

	reply := d.Handle(context.Background(), "¿Cuántos empleados necesito?", nil)
	assert.True(t, responder.called)
	assert.Equal(t, responder.reply, reply)
}

func TestActiveSessionContinuesRegardlessOfContent(t *testing.T) {
	responder := &fakeResponder{}
	d, codec := newTestDispatcher(responder)

	prev, err := codec.Encode("¿Tu nombre?", &Session{Step: StepName})
	require.NoError(t, err)
	history := []Turn{
		{Text: "Quiero agendar una cita", IsUser: true},
		{Text: prev, IsUser: false},
	}

	// Not a booking phrase, but the dialogue is mid-flight.
	reply := d.Handle(context.Background(), "María García", history)
	assert.False(t, responder.called)
	assert.Contains(t, reply, "correo electrónico")

	s, ok := codec.Decode(reply)
	require.True(t, ok)
	assert.Equal(t, StepEmail, s.Step)
	assert.Equal(t, "María García", s.Name)
}

func TestTamperedFragmentIsSessionLoss(t *testing.T) {
	responder := &fakeResponder{reply: "hola"}
	d, codec := newTestDispatcher(responder)

	prev, err := codec.Encode("¿Tu nombre?", &Session{Step: StepName})
	require.NoError(t, err)
	tampered := strings.Replace(prev, ".", "A.", 1)
	history := []Turn{{Text: tampered, IsUser: false}}

	d.Handle(context.Background(), "María García", history)
	assert.True(t, responder.called, "tampered state restarts routing, not the flow")
}

func TestTerminalTurnDoesNotResumeOlderSession(t *testing.T) {
	responder := &fakeResponder{reply: "claro"}
	d, codec := newTestDispatcher(responder)

	old, err := codec.Encode("Resumen de tu cita:", &Session{Step: StepConfirm})
	require.NoError(t, err)
	history := []Turn{
		{Text: old, IsUser: false},
		{Text: "sí", IsUser: true},
		{Text: "¡Tu cita ha sido confirmada!\n\nBOOKING_COMPLETE", IsUser: false},
	}

	d.Handle(context.Background(), "gracias", history)
	assert.True(t, responder.called)
}

func TestAssistantHistoryHasFragmentsStripped(t *testing.T) {
	responder := &fakeResponder{reply: "ok"}
	d, codec := newTestDispatcher(responder)

	bot, err := codec.Encode("¡Tu cita ha sido confirmada!\n\nBOOKING_COMPLETE", &Session{Step: StepInitial})
	require.NoError(t, err)
	history := []Turn{
		{Text: "gracias", IsUser: true},
		{Text: bot, IsUser: false},
	}

	d.Handle(context.Background(), "¿Qué es el programa?", history)
	require.True(t, responder.called)
	require.Len(t, responder.history, 2)
	assert.NotContains(t, responder.history[1].Text, stateMarker)
}

func TestAssistantFailureYieldsGenericMessage(t *testing.T) {
	d, _ := newTestDispatcher(&fakeResponder{err: errors.New("upstream down")})

	reply := d.Handle(context.Background(), "¿Qué es el programa?", nil)
	assert.Equal(t, msgAssistantError, reply)
}

func TestEmptyMessageRejected(t *testing.T) {
	responder := &fakeResponder{}
	d, _ := newTestDispatcher(responder)

	reply := d.Handle(context.Background(), "", nil)
	assert.Equal(t, msgEmptyMessage, reply)
	assert.False(t, responder.called)
}
