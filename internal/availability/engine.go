package availability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/pkg/apperror"
)

// ErrLookupUnavailable means the booked-slot lookup kept failing after the
// bounded retry. It is distinct from an empty slot list: the caller should
// suggest trying again later, not report "no availability".
var ErrLookupUnavailable = apperror.New(http.StatusServiceUnavailable, "availability lookup temporarily unavailable")

// BookedLookup reports the times already booked on a given day. It is read
// fresh on every computation; other callers may book slots concurrently.
type BookedLookup interface {
	BookedTimes(ctx context.Context, date time.Time) ([]string, error)
}

// Config holds the business-hour window and scan bounds. All values are
// deployment configuration rather than constants: the right lookahead and
// retry bounds depend on real holiday and booking density.
type Config struct {
	DayStart      string // inclusive, "HH:MM"
	DayEnd        string // inclusive, "HH:MM"
	SlotMinutes   int
	TargetDays    int      // stop after this many dates with availability
	LookaheadDays int      // scan at most this many calendar days
	Holidays      []string // "YYYY-MM-DD" dates with no bookable slots
	MaxAttempts   int      // bounded retry for the booked lookup
}

// Slot is one calendar day with at least one bookable time remaining.
type Slot struct {
	Date          string   `json:"date"` // "YYYY-MM-DD"
	FormattedDate string   `json:"formatted_date"`
	Times         []string `json:"times"`
}

type Engine struct {
	cfg      Config
	startMin int // minutes since midnight
	endMin   int
	holidays map[string]struct{}
	lookup   BookedLookup
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(cfg Config, lookup BookedLookup, logger *zap.Logger) (*Engine, error) {
	start, err := parseClock(cfg.DayStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day start %q: %w", cfg.DayStart, err)
	}
	end, err := parseClock(cfg.DayEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid day end %q: %w", cfg.DayEnd, err)
	}
	if end < start {
		return nil, fmt.Errorf("day end %q before day start %q", cfg.DayEnd, cfg.DayStart)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("slot minutes must be positive, got %d", cfg.SlotMinutes)
	}
	if cfg.TargetDays <= 0 || cfg.LookaheadDays < cfg.TargetDays {
		return nil, fmt.Errorf("lookahead %d must cover target %d", cfg.LookaheadDays, cfg.TargetDays)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, d := range cfg.Holidays {
		holidays[d] = struct{}{}
	}

	return &Engine{
		cfg:      cfg,
		startMin: start,
		endMin:   end,
		holidays: holidays,
		lookup:   lookup,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// AvailableSlots scans forward from today, skipping weekends and holidays,
// and collects up to TargetDays dates that still have at least one free time.
// The extra lookahead lets the engine ride out a run of fully booked days
// before giving up; an empty result genuinely means no availability.
func (e *Engine) AvailableSlots(ctx context.Context) ([]Slot, error) {
	var slots []Slot
	err := e.retry(ctx, func() error {
		s, err := e.computeSlots(ctx)
		if err != nil {
			return err
		}
		slots = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// FreeTimes returns the currently free times for one calendar day. Recomputed
// fresh on every call: the day's availability may have changed since it was
// last offered to the caller.
func (e *Engine) FreeTimes(ctx context.Context, date time.Time) ([]string, error) {
	if !e.bookableDay(date) {
		return nil, nil
	}

	var times []string
	err := e.retry(ctx, func() error {
		booked, err := e.lookup.BookedTimes(ctx, dateOnly(date))
		if err != nil {
			return err
		}
		times = e.freeTimes(booked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return times, nil
}

// IsSlotFree reports whether the given (date, time) pair is still bookable.
func (e *Engine) IsSlotFree(ctx context.Context, date time.Time, clock string) (bool, error) {
	times, err := e.FreeTimes(ctx, date)
	if err != nil {
		return false, err
	}
	for _, t := range times {
		if t == clock {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) computeSlots(ctx context.Context) ([]Slot, error) {
	var slots []Slot
	today := dateOnly(e.now())

	for i := 0; i < e.cfg.LookaheadDays && len(slots) < e.cfg.TargetDays; i++ {
		day := today.AddDate(0, 0, i)
		if !e.bookableDay(day) {
			continue
		}

		booked, err := e.lookup.BookedTimes(ctx, day)
		if err != nil {
			return nil, err
		}

		times := e.freeTimes(booked)
		if len(times) == 0 {
			continue
		}

		slots = append(slots, Slot{
			Date:          day.Format("2006-01-02"),
			FormattedDate: FormatDateES(day),
			Times:         times,
		})
	}

	return slots, nil
}

func (e *Engine) bookableDay(day time.Time) bool {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := e.holidays[day.Format("2006-01-02")]
	return !holiday
}

// freeTimes enumerates the business window at the configured increment, both
// bounds inclusive, minus the already booked times.
func (e *Engine) freeTimes(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	var times []string
	for m := e.startMin; m <= e.endMin; m += e.cfg.SlotMinutes {
		t := fmt.Sprintf("%02d:%02d", m/60, m%60)
		if _, ok := taken[t]; !ok {
			times = append(times, t)
		}
	}
	return times
}

// retry runs op with bounded exponential backoff. Exhaustion surfaces as
// ErrLookupUnavailable so callers never mistake a flaky lookup for "no slots".
func (e *Engine) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.cfg.MaxAttempts-1)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		e.logger.Warn("booked-slot lookup failed after retries",
			zap.Int("attempts", e.cfg.MaxAttempts),
			zap.Error(err),
		)
		return ErrLookupUnavailable
	}
	return nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateES renders a date the way the prompts present it: "2 de enero de 2026".
func FormatDateES(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
