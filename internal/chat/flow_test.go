package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
	"github.com/ingenieria-ia/booking-chat-backend/internal/availability"
	"github.com/ingenieria-ia/booking-chat-backend/internal/metrics"
)

var testServices = []string{
	"Inteligencia Artificial (hasta 6.000€)",
	"Ventas Digitales (hasta 6.000€)",
	"Estrategia y Rendimiento de Negocio (hasta 6.000€)",
}

type fakeEngine struct {
	slots     []availability.Slot
	times     map[string][]string
	slotsErr  error
	freeCheck map[string]bool // "date time" -> free; missing means free
}

func (f *fakeEngine) AvailableSlots(context.Context) ([]availability.Slot, error) {
	return f.slots, f.slotsErr
}

func (f *fakeEngine) FreeTimes(_ context.Context, date time.Time) ([]string, error) {
	return f.times[date.Format("2006-01-02")], nil
}

func (f *fakeEngine) IsSlotFree(_ context.Context, date time.Time, clock string) (bool, error) {
	free, ok := f.freeCheck[date.Format("2006-01-02")+" "+clock]
	if !ok {
		return true, nil
	}
	return free, nil
}

type fakeBooker struct {
	booked  []appointment.BookRequest
	err     error
	errOnce bool
}

func (f *fakeBooker) Book(_ context.Context, req appointment.BookRequest) (*appointment.Appointment, error) {
	if f.err != nil {
		err := f.err
		if f.errOnce {
			f.err = nil
		}
		return nil, err
	}
	f.booked = append(f.booked, req)
	return &appointment.Appointment{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Date:    req.Date,
		Time:    req.Time,
		Service: req.Service,
		Status:  appointment.StatusPending,
	}, nil
}

func defaultEngine() *fakeEngine {
	return &fakeEngine{
		slots: []availability.Slot{
			{Date: "2026-01-05", FormattedDate: "5 de enero de 2026", Times: []string{"10:30", "11:00"}},
			{Date: "2026-01-06", FormattedDate: "6 de enero de 2026", Times: []string{"10:30"}},
		},
		times: map[string][]string{
			"2026-01-05": {"10:30", "11:00"},
			"2026-01-06": {"10:30"},
		},
	}
}

func newTestFlow(engine SlotEngine, booker Booker) *Flow {
	return NewFlow(testServices, "ES", engine, booker, nil, metrics.Nop(), zap.NewNop())
}

// Run the dialogue up to the confirmation summary.
func sessionAtConfirm(t *testing.T, f *Flow) *Session {
	t.Helper()
	ctx := context.Background()
	s := &Session{Step: StepInitial}

	steps := []string{"", "María García", "maria@example.com", "saltar", "1", "1", "2"}
	for _, input := range steps {
		_, terminal := f.Step(ctx, input, s)
		require.False(t, terminal)
	}
	require.Equal(t, StepConfirm, s.Step)
	return s
}

func TestStepInitialPromptsForName(t *testing.T) {
	f := newTestFlow(defaultEngine(), &fakeBooker{})
	s := &Session{Step: StepInitial}

	reply, terminal := f.Step(context.Background(), "quiero una cita", s)
	assert.False(t, terminal)
	assert.Equal(t, StepName, s.Step)
	assert.Contains(t, reply, "nombre completo")
}

func TestInvalidNameDoesNotAdvance(t *testing.T) {
	f := newTestFlow(defaultEngine(), &fakeBooker{})
	s := &Session{Step: StepName}

	reply, terminal := f.Step(context.Background(), "123", s)
	assert.False(t, terminal)
	assert.Equal(t, StepName, s.Step)
	assert.Empty(t, s.Name)
	assert.Contains(t, reply, "nombre válido")

	// Same input, same outcome.
	again, _ := f.Step(context.Background(), "123", s)
	assert.Equal(t, reply, again)
}

func TestHappyPathBooksOnce(t *testing.T) {
	booker := &fakeBooker{}
	f := newTestFlow(defaultEngine(), booker)
	ctx := context.Background()
	s := &Session{Step: StepInitial}

	reply, _ := f.Step(ctx, "", s)
	assert.Contains(t, reply, "Bienvenido")

	reply, _ = f.Step(ctx, "María García", s)
	assert.Contains(t, reply, "Gracias")
	assert.Equal(t, StepEmail, s.Step)

	reply, _ = f.Step(ctx, "maria@example.com", s)
	assert.Contains(t, reply, "teléfono")

	reply, _ = f.Step(ctx, "612345678", s)
	assert.Contains(t, reply, "¿Qué servicio te interesa?")
	assert.Equal(t, "612345678", s.Phone)

	reply, _ = f.Step(ctx, "1", s)
	assert.Contains(t, reply, "fechas disponibles")
	assert.Equal(t, testServices[0], s.Service)

	reply, _ = f.Step(ctx, "1", s)
	assert.Contains(t, reply, "horarios disponibles")
	assert.Equal(t, "2026-01-05", s.Date)

	reply, _ = f.Step(ctx, "2", s)
	assert.Contains(t, reply, "Resumen de tu cita")
	assert.Equal(t, "11:00", s.Time)

	reply, terminal := f.Step(ctx, "sí", s)
	assert.True(t, terminal)
	assert.Contains(t, reply, MarkerComplete)

	require.Len(t, booker.booked, 1)
	req := booker.booked[0]
	assert.Equal(t, "María García", req.Name)
	assert.Equal(t, "2026-01-05", req.Date.Format("2006-01-02"))
	assert.Equal(t, "11:00", req.Time)
	assert.Equal(t, testServices[0], req.Service)
}

func TestSaltarSkipsPhone(t *testing.T) {
	f := newTestFlow(defaultEngine(), &fakeBooker{})
	s := &Session{Step: StepPhone, Name: "Ana", Email: "ana@example.com"}

	_, terminal := f.Step(context.Background(), "saltar", s)
	assert.False(t, terminal)
	assert.Equal(t, StepService, s.Step)
	assert.Empty(t, s.Phone)
}

func TestInvalidMenuChoicesReprompt(t *testing.T) {
	f := newTestFlow(defaultEngine(), &fakeBooker{})
	ctx := context.Background()

	s := &Session{Step: StepService}
	reply, _ := f.Step(ctx, "9", s)
	assert.Equal(t, StepService, s.Step)
	assert.Contains(t, reply, "lista de servicios")

	s = &Session{Step: StepDate, OfferedDates: defaultEngine().slots}
	reply, _ = f.Step(ctx, "0", s)
	assert.Equal(t, StepDate, s.Step)
	assert.Contains(t, reply, "lista de fechas")

	s = &Session{Step: StepTime, OfferedTimes: []string{"10:30"}, Date: "2026-01-05"}
	reply, _ = f.Step(ctx, "dos", s)
	assert.Equal(t, StepTime, s.Step)
	assert.Contains(t, reply, "lista de horarios")
}

func TestNoAvailabilityIsTerminal(t *testing.T) {
	engine := defaultEngine()
	engine.slots = nil
	f := newTestFlow(engine, &fakeBooker{})

	s := &Session{Step: StepService, Name: "Ana", Email: "ana@example.com"}
	reply, terminal := f.Step(context.Background(), "1", s)
	assert.True(t, terminal)
	assert.Contains(t, reply, "no hay fechas disponibles")
}

func TestLookupFailureIsNotNoAvailability(t *testing.T) {
	engine := defaultEngine()
	engine.slotsErr = availability.ErrLookupUnavailable
	f := newTestFlow(engine, &fakeBooker{})

	s := &Session{Step: StepService, Name: "Ana", Email: "ana@example.com"}
	reply, _ := f.Step(context.Background(), "1", s)
	assert.NotContains(t, reply, "no hay fechas disponibles")
	assert.Contains(t, reply, "intenta de nuevo más tarde")
}

func TestDateFullyBookedSinceOfferedReoffersDates(t *testing.T) {
	engine := defaultEngine()
	engine.times["2026-01-05"] = nil
	f := newTestFlow(engine, &fakeBooker{})

	s := &Session{Step: StepDate, OfferedDates: engine.slots}
	reply, terminal := f.Step(context.Background(), "1", s)
	assert.False(t, terminal)
	assert.Equal(t, StepDate, s.Step)
	assert.Contains(t, reply, "ya no tiene horarios")
	assert.Contains(t, reply, "fechas disponibles")
}

func TestCancelClearsSession(t *testing.T) {
	f := newTestFlow(defaultEngine(), &fakeBooker{})
	s := sessionAtConfirm(t, f)

	reply, terminal := f.Step(context.Background(), "no", s)
	assert.True(t, terminal)
	assert.Contains(t, reply, MarkerCancelled)
	assert.Equal(t, &Session{Step: StepInitial}, s)
}

func TestConfirmUnknownAnswerReprompts(t *testing.T) {
	f := newTestFlow(defaultEngine(), &fakeBooker{})
	s := sessionAtConfirm(t, f)

	reply, terminal := f.Step(context.Background(), "tal vez", s)
	assert.False(t, terminal)
	assert.Equal(t, StepConfirm, s.Step)
	assert.Contains(t, reply, "'sí' para confirmar")
}

func TestConfirmSlotTakenReturnsToTimeSelection(t *testing.T) {
	engine := defaultEngine()
	engine.freeCheck = map[string]bool{"2026-01-05 11:00": false}
	booker := &fakeBooker{}
	f := newTestFlow(engine, booker)
	s := sessionAtConfirm(t, f)

	reply, terminal := f.Step(context.Background(), "sí", s)
	assert.False(t, terminal)
	assert.Equal(t, StepTime, s.Step)
	assert.Empty(t, s.Time)
	assert.Contains(t, reply, "acaba de ser reservado")
	assert.Contains(t, reply, "horarios disponibles")
	assert.Empty(t, booker.booked, "nothing persisted for a taken slot")
}

func TestConfirmUniquenessViolationTreatedAsSlotTaken(t *testing.T) {
	engine := defaultEngine()
	booker := &fakeBooker{err: appointment.ErrSlotTaken, errOnce: true}
	f := newTestFlow(engine, booker)
	s := sessionAtConfirm(t, f)

	reply, terminal := f.Step(context.Background(), "sí", s)
	assert.False(t, terminal)
	assert.Equal(t, StepTime, s.Step)
	assert.Contains(t, reply, "acaba de ser reservado")
}
