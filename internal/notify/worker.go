package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
)

// Worker consumes scheduled reminder tasks and sends the reminder mail.
type Worker struct {
	server *asynq.Server
	mailer *Mailer
	repo   appointment.Repository
	logger *zap.Logger
}

func NewWorker(redisOpt asynq.RedisClientOpt, mailer *Mailer, repo appointment.Repository, logger *zap.Logger) *Worker {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
	})
	return &Worker{server: server, mailer: mailer, repo: repo, logger: logger}
}

// Run blocks until Shutdown is called.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSendReminder, w.handleReminder)
	return w.server.Run(mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleReminder(ctx context.Context, task *asynq.Task) error {
	var payload ReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Unparseable payloads will never succeed, drop them.
		w.logger.Error("invalid reminder payload", zap.Error(err))
		return nil
	}

	// The appointment may have been cancelled or deleted since scheduling.
	appt, err := w.repo.GetByID(ctx, payload.AppointmentID.String())
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			w.logger.Info("appointment gone, skipping reminder",
				zap.String("appointment_id", payload.AppointmentID.String()))
			return nil
		}
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status == appointment.StatusCancelled {
		w.logger.Info("appointment cancelled, skipping reminder",
			zap.String("appointment_id", appt.ID.String()))
		return nil
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		date = appt.Date
	}
	appt.Date = date

	if err := w.mailer.SendReminder(ctx, appt); err != nil {
		return err
	}
	w.logger.Info("reminder sent",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("email", appt.Email))
	return nil
}
