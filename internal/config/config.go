package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	HTTPAddr     string
	DBDSN        string

	// Admin view auth
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	AdminPINHash      string

	// Conversation state fragments are HMAC-signed with this secret.
	StateSecret string

	// Booking window
	BookingDayStart      string
	BookingDayEnd        string
	BookingSlotMinutes   int
	BookingTargetDays    int
	BookingLookaheadDays int
	BookingHolidays      []string

	// Services offered in the chat menu
	Services []string

	// Phone validation region (ISO 3166-1 alpha-2)
	PhoneRegion string

	// Bounded retry for booked-slot lookups
	SlotLookupMaxAttempts int

	// Free-form assistant
	GeminiAPIKey string
	GeminiModel  string

	// Redis, used by the reminder queue
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Outgoing mail
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	AppName      string
	BaseURL      string
	ReminderLead time.Duration

	// Chat endpoint rate limit
	ChatRatePerMin int
	ChatRateBurst  int
}

var defaultServices = []string{
	"Inteligencia Artificial (hasta 6.000€)",
	"Ventas Digitales (hasta 6.000€)",
	"Estrategia y Rendimiento de Negocio (hasta 6.000€)",
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Comma-separated allowed origins in production (default: empty)
	cfg.ProdOrigins = getEnvAsList("PROD_ORIGINS")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing admin tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Bcrypt hash of the admin PIN, required for the management view
	cfg.AdminPINHash = os.Getenv("ADMIN_PIN_HASH")
	if cfg.AdminPINHash == "" {
		return nil, fmt.Errorf("ADMIN_PIN_HASH is required")
	}

	// Secret for signing conversation state fragments. Falls back to the JWT
	// secret so a minimal deployment needs only one secret.
	cfg.StateSecret = getEnv("STATE_SECRET", cfg.JWTSecret)

	// Booking window. "HH:MM" bounds are inclusive.
	cfg.BookingDayStart = getEnv("BOOKING_DAY_START", "10:30")
	cfg.BookingDayEnd = getEnv("BOOKING_DAY_END", "14:00")
	if _, err := time.Parse("15:04", cfg.BookingDayStart); err != nil {
		return nil, fmt.Errorf("invalid BOOKING_DAY_START: %w", err)
	}
	if _, err := time.Parse("15:04", cfg.BookingDayEnd); err != nil {
		return nil, fmt.Errorf("invalid BOOKING_DAY_END: %w", err)
	}

	cfg.BookingSlotMinutes, err = getEnvAsInt("BOOKING_SLOT_MINUTES", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_SLOT_MINUTES: %w", err)
	}
	cfg.BookingTargetDays, err = getEnvAsInt("BOOKING_TARGET_DAYS", 7)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TARGET_DAYS: %w", err)
	}
	cfg.BookingLookaheadDays, err = getEnvAsInt("BOOKING_LOOKAHEAD_DAYS", 14)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_LOOKAHEAD_DAYS: %w", err)
	}

	// Comma-separated "YYYY-MM-DD" dates with no bookable slots.
	cfg.BookingHolidays = getEnvAsList("BOOKING_HOLIDAYS")
	for _, d := range cfg.BookingHolidays {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("invalid BOOKING_HOLIDAYS entry %q: %w", d, err)
		}
	}

	cfg.Services = getEnvAsList("BOOKING_SERVICES")
	if len(cfg.Services) == 0 {
		cfg.Services = defaultServices
	}

	cfg.PhoneRegion = getEnv("PHONE_REGION", "ES")

	cfg.SlotLookupMaxAttempts, err = getEnvAsInt("SLOT_LOOKUP_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_LOOKUP_MAX_ATTEMPTS: %w", err)
	}

	// Assistant key is optional: without it the chat falls back to a canned reply.
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "models/gemini-1.5-flash")

	// Redis for the reminder queue. An empty REDIS_ADDR disables reminders.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// SMTP settings for confirmation and reminder mail.
	// An empty SMTP_HOST disables outgoing mail (useful in dev).
	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort, err = getEnvAsInt("SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.SMTPUsername)
	cfg.AppName = getEnv("APP_NAME", "Ingeniería IA")
	cfg.BaseURL = getEnv("BASE_URL", "http://localhost:8080")

	leadStr := getEnv("REMINDER_LEAD", "24h")
	lead, err := time.ParseDuration(leadStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_LEAD: %w", err)
	}
	cfg.ReminderLead = lead

	cfg.ChatRatePerMin, err = getEnvAsInt("CHAT_RATE_PER_MIN", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_RATE_PER_MIN: %w", err)
	}
	cfg.ChatRateBurst, err = getEnvAsInt("CHAT_RATE_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_RATE_BURST: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsList splits a comma-separated environment variable into trimmed,
// non-empty entries. Returns nil if the variable is unset or empty.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
