package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
)

const TypeSendReminder = "reminder:send"

// ReminderPayload carries everything the worker needs to send the mail, so
// it survives even if the appointment row is edited meanwhile.
type ReminderPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Service       string    `json:"service"`
	Date          string    `json:"date"` // "YYYY-MM-DD"
	Time          string    `json:"time"`
}

func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}

	return task, opts, nil
}

// Scheduler enqueues delayed reminder tasks on Redis.
type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

func (s *Scheduler) EnqueueReminder(appt *appointment.Appointment, fireAt time.Time) error {
	payload := ReminderPayload{
		AppointmentID: appt.ID,
		Name:          appt.Name,
		Email:         appt.Email,
		Service:       appt.Service,
		Date:          appt.Date.Format("2006-01-02"),
		Time:          appt.Time,
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	if _, err := s.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}
