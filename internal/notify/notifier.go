// Package notify delivers appointment confirmation mails and schedules the
// reminder mail sent ahead of the appointment.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
)

// Notifier is what the booking flow fires after a successful persist. Both
// calls are best effort from the caller's point of view.
type Notifier interface {
	SendConfirmation(ctx context.Context, appt *appointment.Appointment) error
	ScheduleReminder(ctx context.Context, appt *appointment.Appointment) error
}

// Service sends the confirmation directly over SMTP and enqueues the
// reminder as a delayed task. Either half may be absent: a nil mailer or
// scheduler turns the corresponding call into a logged no-op, so the flow
// works in deployments without SMTP or Redis.
type Service struct {
	mailer    *Mailer
	scheduler *Scheduler
	lead      time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(mailer *Mailer, scheduler *Scheduler, lead time.Duration, logger *zap.Logger) *Service {
	return &Service{
		mailer:    mailer,
		scheduler: scheduler,
		lead:      lead,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) SendConfirmation(ctx context.Context, appt *appointment.Appointment) error {
	if s.mailer == nil {
		s.logger.Info("mail disabled, skipping confirmation",
			zap.String("appointment_id", appt.ID.String()))
		return nil
	}
	return s.mailer.SendConfirmation(ctx, appt)
}

// ScheduleReminder enqueues the reminder mail to fire lead time before the
// appointment. A fire time already in the past is skipped, not sent late.
func (s *Service) ScheduleReminder(_ context.Context, appt *appointment.Appointment) error {
	if s.scheduler == nil {
		s.logger.Info("reminders disabled, skipping",
			zap.String("appointment_id", appt.ID.String()))
		return nil
	}

	at, err := appointmentTime(appt)
	if err != nil {
		return fmt.Errorf("compute reminder time: %w", err)
	}
	fireAt := at.Add(-s.lead)
	if !fireAt.After(s.now()) {
		s.logger.Info("reminder fire time already past, skipping",
			zap.String("appointment_id", appt.ID.String()),
			zap.Time("fire_at", fireAt))
		return nil
	}

	return s.scheduler.EnqueueReminder(appt, fireAt)
}

// appointmentTime combines the date column with the "HH:MM" time column.
func appointmentTime(appt *appointment.Appointment) (time.Time, error) {
	clock, err := time.Parse("15:04", appt.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment time %q: %w", appt.Time, err)
	}
	d := appt.Date
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}
