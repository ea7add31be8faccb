package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/api"
	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
	"github.com/ingenieria-ia/booking-chat-backend/internal/assistant"
	"github.com/ingenieria-ia/booking-chat-backend/internal/auth"
	"github.com/ingenieria-ia/booking-chat-backend/internal/availability"
	"github.com/ingenieria-ia/booking-chat-backend/internal/chat"
	"github.com/ingenieria-ia/booking-chat-backend/internal/config"
	"github.com/ingenieria-ia/booking-chat-backend/internal/metrics"
	"github.com/ingenieria-ia/booking-chat-backend/internal/notify"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router *gin.Engine

	// Worker consumes scheduled reminder tasks. Nil when mail or Redis is
	// not configured.
	Worker *notify.Worker

	closers []func() error
}

// NewContainer initializes all modules and returns the container.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) (*Container, error) {
	c := &Container{}

	// Init components
	hasher := auth.NewBcryptSecretHasher()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)
	codec := chat.NewCodec(cfg.StateSecret)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	sink := metrics.NewPrometheus(promReg)

	// Appointment module
	apptRepo := appointment.NewPgxRepository(pool)
	apptService := appointment.NewService(apptRepo)

	// Availability engine, reading booked slots through the appointment service
	engine, err := availability.NewEngine(availability.Config{
		DayStart:      cfg.BookingDayStart,
		DayEnd:        cfg.BookingDayEnd,
		SlotMinutes:   cfg.BookingSlotMinutes,
		TargetDays:    cfg.BookingTargetDays,
		LookaheadDays: cfg.BookingLookaheadDays,
		Holidays:      cfg.BookingHolidays,
		MaxAttempts:   cfg.SlotLookupMaxAttempts,
	}, apptService, logger)
	if err != nil {
		return nil, fmt.Errorf("init availability engine: %w", err)
	}

	// Notifications. Mail needs SMTP, reminders additionally need Redis.
	var mailer *notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewMailer(notify.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			AppName:  cfg.AppName,
			BaseURL:  cfg.BaseURL,
		})
	}

	var scheduler *notify.Scheduler
	if mailer != nil && cfg.RedisAddr != "" {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		client := asynq.NewClient(redisOpt)
		c.closers = append(c.closers, client.Close)
		scheduler = notify.NewScheduler(client)
		c.Worker = notify.NewWorker(redisOpt, mailer, apptRepo, logger)
	}
	notifier := notify.NewService(mailer, scheduler, cfg.ReminderLead, logger)

	// Free-form assistant: Gemini when a key is configured, canned otherwise.
	var responder chat.Responder = assistant.Static{}
	if cfg.GeminiAPIKey != "" {
		ai, err := assistant.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init assistant: %w", err)
		}
		c.closers = append(c.closers, ai.Close)
		responder = ai
	}

	// Chat module
	flow := chat.NewFlow(cfg.Services, cfg.PhoneRegion, engine, apptService, notifier, sink, logger)
	classifier := chat.NewPatternClassifier()
	dispatcher := chat.NewDispatcher(codec, flow, classifier, responder, sink, logger)

	// Router
	c.Router = api.NewRouter(cfg, apptService, dispatcher, jwtManager, hasher, promReg, logger)

	return c, nil
}

// Close releases clients owned by the container.
func (c *Container) Close() {
	for _, fn := range c.closers {
		_ = fn()
	}
}
