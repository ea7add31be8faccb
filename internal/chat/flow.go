package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
	"github.com/ingenieria-ia/booking-chat-backend/internal/availability"
	"github.com/ingenieria-ia/booking-chat-backend/internal/chat/validate"
	"github.com/ingenieria-ia/booking-chat-backend/internal/metrics"
	"github.com/ingenieria-ia/booking-chat-backend/internal/notify"
)

// SlotEngine is the availability lookup the flow offers dates and times from.
type SlotEngine interface {
	AvailableSlots(ctx context.Context) ([]availability.Slot, error)
	FreeTimes(ctx context.Context, date time.Time) ([]string, error)
	IsSlotFree(ctx context.Context, date time.Time, clock string) (bool, error)
}

// Booker is the single write path for confirmed bookings.
type Booker interface {
	Book(ctx context.Context, req appointment.BookRequest) (*appointment.Appointment, error)
}

// Terminal markers appended to the last reply of a finished dialogue. The
// frontend watches for them; they replace the state fragment, which a
// finished dialogue no longer carries.
const (
	MarkerComplete  = "BOOKING_COMPLETE"
	MarkerCancelled = "BOOKING_CANCELLED"
)

const (
	msgWelcome = "<strong>¡Bienvenido al sistema de reservas!</strong>\n\n" +
		"Para ayudarte a agendar una cita, necesito algunos datos.\n\n" +
		"<strong>Por favor, introduce tu nombre completo:</strong>"
	msgAskEmail = "<strong>Por favor, introduce tu correo electrónico para enviarte " +
		"la confirmación de la cita:</strong>"
	msgAskPhone = "<strong>¿Podrías proporcionarme un número de teléfono para contactarte en caso necesario?</strong>\n" +
		"(Este campo es opcional, puedes escribir 'saltar' para continuar)"

	errName    = "<strong>Por favor, ingresa un nombre válido usando solo letras</strong> (ejemplo: Juan Pérez)."
	errEmail   = "<strong>Por favor, ingresa un correo electrónico válido</strong> (ejemplo: nombre@dominio.com)."
	errPhone   = "<strong>Por favor, ingresa un número de teléfono español válido o escribe 'saltar'</strong>."
	errService = "<strong>Por favor, selecciona un número válido de la lista de servicios.</strong>"
	errDate    = "<strong>Por favor, selecciona un número válido de la lista de fechas.</strong>"
	errTime    = "<strong>Por favor, selecciona un número válido de la lista de horarios.</strong>"
	errConfirm = "<strong>Por favor, responde 'sí' para confirmar o 'no' para cancelar.</strong>"

	msgNoDates = "<strong>Lo siento, no hay fechas disponibles en los próximos días.</strong>\n" +
		"Por favor, intenta más tarde."
	msgTryLater = "<strong>Lo siento, ha ocurrido un error. Por favor, intenta de nuevo más tarde.</strong>"

	msgComplete = "<strong>¡Tu cita ha sido confirmada!</strong>\n\n" +
		"Te hemos enviado un correo electrónico con los detalles.\n" +
		"También recibirás un recordatorio 24 horas antes de la cita.\n\n" +
		"¿Hay algo más en lo que pueda ayudarte?\n\n" + MarkerComplete
	msgCancelled = "<strong>De acuerdo, he cancelado la reserva.</strong>\n\n" +
		"¿Hay algo más en lo que pueda ayudarte?\n\n" + MarkerCancelled
)

// Flow is the booking state machine. It holds no per-conversation state:
// the Session passed to Step carries all of it.
type Flow struct {
	services    []string
	phoneRegion string
	engine      SlotEngine
	booker      Booker
	notifier    notify.Notifier
	sink        metrics.Sink
	logger      *zap.Logger
}

func NewFlow(services []string, phoneRegion string, engine SlotEngine, booker Booker, notifier notify.Notifier, sink metrics.Sink, logger *zap.Logger) *Flow {
	return &Flow{
		services:    services,
		phoneRegion: phoneRegion,
		engine:      engine,
		booker:      booker,
		notifier:    notifier,
		sink:        sink,
		logger:      logger,
	}
}

// Step advances the dialogue one message. It mutates s in place and returns
// the reply text. terminal means the dialogue is over and the reply must not
// carry a state fragment; the session is dead either way.
//
// Invalid input never advances the step: the caller is re-prompted with an
// inline error and the session unchanged.
func (f *Flow) Step(ctx context.Context, input string, s *Session) (reply string, terminal bool) {
	input = strings.TrimSpace(input)

	switch s.Step {
	case StepInitial:
		f.sink.BookingStarted()
		s.Step = StepName
		return msgWelcome, false

	case StepName:
		if !validate.Name(input) {
			return errName, false
		}
		s.Name = input
		s.Step = StepEmail
		return fmt.Sprintf("Gracias <strong>%s</strong>.\n\n%s", input, msgAskEmail), false

	case StepEmail:
		if !validate.Email(input) {
			return errEmail, false
		}
		s.Email = input
		s.Step = StepPhone
		return msgAskPhone, false

	case StepPhone:
		if strings.EqualFold(input, "saltar") {
			input = ""
		}
		if !validate.Phone(input, f.phoneRegion) {
			return errPhone, false
		}
		s.Phone = input
		s.Step = StepService
		return f.servicePrompt(), false

	case StepService:
		n, ok := validate.Choice(input, len(f.services))
		if !ok {
			return errService, false
		}
		s.Service = f.services[n-1]
		return f.offerDates(ctx, s, fmt.Sprintf("Has seleccionado: <strong>%s</strong>\n\n", s.Service))

	case StepDate:
		n, ok := validate.Choice(input, len(s.OfferedDates))
		if !ok {
			return errDate, false
		}
		return f.acceptDate(ctx, s, s.OfferedDates[n-1])

	case StepTime:
		n, ok := validate.Choice(input, len(s.OfferedTimes))
		if !ok {
			return errTime, false
		}
		s.Time = s.OfferedTimes[n-1]
		s.Step = StepConfirm
		return f.summary(s), false

	case StepConfirm:
		confirmed, ok := validate.Confirmation(input)
		if !ok {
			return errConfirm, false
		}
		if !confirmed {
			f.sink.BookingCancelled()
			*s = Session{Step: StepInitial}
			return msgCancelled, true
		}
		return f.confirm(ctx, s)
	}

	f.logger.Error("unknown dialogue step", zap.String("step", string(s.Step)))
	return msgTryLater, true
}

func (f *Flow) servicePrompt() string {
	var b strings.Builder
	b.WriteString("<strong>¿Qué servicio te interesa?</strong>\n\n<ul>\n")
	for i, svc := range f.services {
		fmt.Fprintf(&b, "<li>%d. %s</li>\n", i+1, svc)
	}
	b.WriteString("</ul>\n\n<strong>Por favor, selecciona el número del servicio deseado:</strong>")
	return b.String()
}

// offerDates recomputes availability fresh and moves the session to date
// selection. The offered list is pinned in the session so the numbered
// answer refers to what was actually shown.
func (f *Flow) offerDates(ctx context.Context, s *Session, prefix string) (string, bool) {
	slots, err := f.engine.AvailableSlots(ctx)
	if err != nil {
		f.logger.Warn("availability lookup failed", zap.Error(err))
		return msgTryLater, true
	}
	if len(slots) == 0 {
		return msgNoDates, true
	}

	s.Date, s.FormattedDate, s.Time = "", "", ""
	s.OfferedDates = slots
	s.OfferedTimes = nil
	s.Step = StepDate

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("<strong>Estas son las fechas disponibles:</strong>\n<ul>\n")
	for i, slot := range slots {
		fmt.Fprintf(&b, "<li>%d. %s</li>\n", i+1, slot.FormattedDate)
	}
	b.WriteString("</ul>\n<strong>Por favor, selecciona el número de la fecha que prefieres:</strong>")
	return b.String(), false
}

// acceptDate records the chosen date and offers its times, recomputed fresh:
// the times shown when the date list was built may be gone by now.
func (f *Flow) acceptDate(ctx context.Context, s *Session, slot availability.Slot) (string, bool) {
	date, err := time.Parse("2006-01-02", slot.Date)
	if err != nil {
		f.logger.Error("corrupt date in session", zap.String("date", slot.Date))
		return msgTryLater, true
	}

	times, err := f.engine.FreeTimes(ctx, date)
	if err != nil {
		f.logger.Warn("availability lookup failed", zap.Error(err))
		return msgTryLater, true
	}
	if len(times) == 0 {
		// Fully booked since offered: withdraw the date and re-offer.
		return f.offerDates(ctx, s,
			fmt.Sprintf("Lo sentimos, el <strong>%s</strong> ya no tiene horarios disponibles.\n\n", slot.FormattedDate))
	}

	s.Date = slot.Date
	s.FormattedDate = slot.FormattedDate
	s.OfferedTimes = times
	s.OfferedDates = nil
	s.Step = StepTime

	var b strings.Builder
	fmt.Fprintf(&b, "Has seleccionado el <strong>%s</strong>.\n\n", slot.FormattedDate)
	b.WriteString("<strong>Estos son los horarios disponibles:</strong>\n<ul>\n")
	for i, t := range times {
		fmt.Fprintf(&b, "<li>%d. %s</li>\n", i+1, t)
	}
	b.WriteString("</ul>\n<strong>Por favor, selecciona el número del horario que prefieres:</strong>")
	return b.String(), false
}

func (f *Flow) summary(s *Session) string {
	phone := s.Phone
	if phone == "" {
		phone = "No proporcionado"
	}
	return fmt.Sprintf(
		"<strong>Resumen de tu cita:</strong>\n\n"+
			"Nombre: %s\nEmail: %s\nTeléfono: %s\nServicio: %s\nFecha: %s\nHora: %s\n\n"+
			"<strong>¿Los datos son correctos?</strong> (Responde 'sí' para confirmar o 'no' para cancelar)",
		s.Name, s.Email, phone, s.Service, s.FormattedDate, s.Time,
	)
}

// confirm re-checks the slot and persists. The unique (date, time) index is
// the real guarantee; the re-check just catches most races with a friendlier
// message before hitting the insert.
func (f *Flow) confirm(ctx context.Context, s *Session) (string, bool) {
	date, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		f.logger.Error("corrupt date in session", zap.String("date", s.Date))
		return msgTryLater, true
	}

	free, err := f.engine.IsSlotFree(ctx, date, s.Time)
	if err != nil {
		f.logger.Warn("slot re-check failed", zap.Error(err))
		// Recoverable: keep the session at confirmation so 'sí' can be retried.
		return msgTryLater, false
	}
	if !free {
		return f.slotTaken(ctx, s, date)
	}

	appt, err := f.booker.Book(ctx, appointment.BookRequest{
		Name:    s.Name,
		Email:   s.Email,
		Phone:   s.Phone,
		Date:    date,
		Time:    s.Time,
		Service: s.Service,
	})
	if err != nil {
		if errors.Is(err, appointment.ErrSlotTaken) {
			// Lost the race between re-check and insert.
			return f.slotTaken(ctx, s, date)
		}
		f.logger.Error("booking persist failed", zap.Error(err))
		return msgTryLater, false
	}

	f.sink.BookingConfirmed()
	f.notify(appt)
	return msgComplete, true
}

// slotTaken sends the caller back to time selection (or date selection when
// the whole day is gone) with an explanation. Distinct from invalid input.
func (f *Flow) slotTaken(ctx context.Context, s *Session, date time.Time) (string, bool) {
	f.sink.SlotConflict()
	f.logger.Info("slot taken since offered",
		zap.String("date", s.Date), zap.String("time", s.Time))

	taken := fmt.Sprintf(
		"Lo sentimos, el horario de las <strong>%s</strong> acaba de ser reservado por otra persona.\n\n", s.Time)

	times, err := f.engine.FreeTimes(ctx, date)
	if err != nil {
		f.logger.Warn("availability lookup failed", zap.Error(err))
		return msgTryLater, true
	}
	if len(times) == 0 {
		return f.offerDates(ctx, s, taken)
	}

	s.Time = ""
	s.OfferedTimes = times
	s.Step = StepTime

	var b strings.Builder
	b.WriteString(taken)
	b.WriteString("<strong>Estos son los horarios disponibles:</strong>\n<ul>\n")
	for i, t := range times {
		fmt.Fprintf(&b, "<li>%d. %s</li>\n", i+1, t)
	}
	b.WriteString("</ul>\n<strong>Por favor, selecciona el número del horario que prefieres:</strong>")
	return b.String(), false
}

// notify is fire and forget: a mail or queue failure never undoes a booking.
func (f *Flow) notify(appt *appointment.Appointment) {
	if f.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := f.notifier.SendConfirmation(ctx, appt); err != nil {
			f.logger.Error("confirmation mail failed",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
		}
		if err := f.notifier.ScheduleReminder(ctx, appt); err != nil {
			f.logger.Error("reminder scheduling failed",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
		}
	}()
}
