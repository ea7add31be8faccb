package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
	"github.com/ingenieria-ia/booking-chat-backend/internal/availability"
)

// Mailer sends appointment mails over SMTP.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	appName string
	baseURL string
}

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
	BaseURL  string
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		appName: cfg.AppName,
		baseURL: cfg.BaseURL,
	}
}

func (m *Mailer) SendConfirmation(ctx context.Context, appt *appointment.Appointment) error {
	subject := fmt.Sprintf("%s - Confirmación de cita", m.appName)
	intro := fmt.Sprintf("Hola %s, tu cita ha sido confirmada.", appt.Name)
	return m.send(ctx, appt, subject, intro)
}

func (m *Mailer) SendReminder(ctx context.Context, appt *appointment.Appointment) error {
	subject := fmt.Sprintf("%s - Recordatorio de cita", m.appName)
	intro := fmt.Sprintf("Hola %s, te recordamos tu cita de mañana.", appt.Name)
	return m.send(ctx, appt, subject, intro)
}

func (m *Mailer) send(ctx context.Context, appt *appointment.Appointment, subject, intro string) error {
	date := availability.FormatDateES(appt.Date)

	text := fmt.Sprintf(
		"%s\n\nServicio: %s\nFecha: %s\nHora: %s\n\nPara cancelar: %s/cancel/%s\n",
		intro, appt.Service, date, appt.Time, m.baseURL, appt.ID,
	)
	html := fmt.Sprintf(
		"<p>%s</p><ul><li>Servicio: %s</li><li>Fecha: %s</li><li>Hora: %s</li></ul>"+
			`<p><a href="%s/cancel/%s">Cancelar cita</a></p>`,
		intro, appt.Service, date, appt.Time, m.baseURL, appt.ID,
	)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", appt.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	// gomail has no context support, so run the send aside and race the ctx.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return context.DeadlineExceeded
	}
}
