package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLookup struct {
	booked   map[string][]string
	failures int
	calls    int
}

func (f *fakeLookup) BookedTimes(_ context.Context, date time.Time) ([]string, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection refused")
	}
	return f.booked[date.Format("2006-01-02")], nil
}

func newTestEngine(t *testing.T, cfg Config, lookup BookedLookup) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, lookup, zap.NewNop())
	require.NoError(t, err)
	return e
}

func defaultConfig() Config {
	return Config{
		DayStart:      "10:30",
		DayEnd:        "14:00",
		SlotMinutes:   30,
		TargetDays:    7,
		LookaheadDays: 14,
		MaxAttempts:   3,
	}
}

// Monday 2026-01-05.
var monday = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func TestAvailableSlotsSkipsWeekends(t *testing.T) {
	e := newTestEngine(t, defaultConfig(), &fakeLookup{})
	e.now = func() time.Time { return monday }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 7)

	// Mon 5th through Fri 9th, then Mon 12th and Tue 13th.
	assert.Equal(t, "2026-01-05", slots[0].Date)
	assert.Equal(t, "2026-01-09", slots[4].Date)
	assert.Equal(t, "2026-01-12", slots[5].Date)
	assert.Equal(t, "2026-01-13", slots[6].Date)
}

func TestAvailableSlotsWindowInclusive(t *testing.T) {
	e := newTestEngine(t, defaultConfig(), &fakeLookup{})
	e.now = func() time.Time { return monday }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	times := slots[0].Times
	require.Len(t, times, 8)
	assert.Equal(t, "10:30", times[0])
	assert.Equal(t, "14:00", times[7])
}

func TestAvailableSlotsSkipsHolidaysAndFullDays(t *testing.T) {
	cfg := defaultConfig()
	cfg.Holidays = []string{"2026-01-06"} // Reyes

	full := []string{"10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30", "14:00"}
	lookup := &fakeLookup{booked: map[string][]string{
		"2026-01-07": full,
	}}

	e := newTestEngine(t, cfg, lookup)
	e.now = func() time.Time { return monday }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 7)

	for _, s := range slots {
		assert.NotEqual(t, "2026-01-06", s.Date)
		assert.NotEqual(t, "2026-01-07", s.Date)
	}
	assert.Equal(t, "2026-01-14", slots[6].Date)
}

func TestAvailableSlotsExcludesBookedTimes(t *testing.T) {
	lookup := &fakeLookup{booked: map[string][]string{
		"2026-01-05": {"10:30", "12:00"},
	}}
	e := newTestEngine(t, defaultConfig(), lookup)
	e.now = func() time.Time { return monday }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.NotContains(t, slots[0].Times, "10:30")
	assert.NotContains(t, slots[0].Times, "12:00")
	assert.Contains(t, slots[0].Times, "11:00")
}

func TestAvailableSlotsRetriesThenSucceeds(t *testing.T) {
	lookup := &fakeLookup{failures: 2}
	e := newTestEngine(t, defaultConfig(), lookup)
	e.now = func() time.Time { return monday }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, 7)
}

func TestAvailableSlotsExhaustedRetriesSurfaceError(t *testing.T) {
	lookup := &fakeLookup{failures: 100}
	e := newTestEngine(t, defaultConfig(), lookup)
	e.now = func() time.Time { return monday }

	_, err := e.AvailableSlots(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupUnavailable)
	assert.Equal(t, 3, lookup.calls)
}

func TestAvailableSlotsShortLookahead(t *testing.T) {
	cfg := defaultConfig()
	cfg.TargetDays = 2
	cfg.LookaheadDays = 2

	e := newTestEngine(t, cfg, &fakeLookup{})
	// Friday: only Friday itself falls inside the window, Saturday is skipped.
	e.now = func() time.Time { return time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC) }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "2026-01-09", slots[0].Date)
}

func TestAvailableSlotsFullyBookedLookahead(t *testing.T) {
	cfg := defaultConfig()
	cfg.TargetDays = 2
	cfg.LookaheadDays = 2

	full := []string{"10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30", "14:00"}
	lookup := &fakeLookup{booked: map[string][]string{
		"2026-01-09": full,
	}}

	e := newTestEngine(t, cfg, lookup)
	// Friday fully booked, Saturday not bookable: nothing to offer.
	e.now = func() time.Time { return time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC) }

	slots, err := e.AvailableSlots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFreeTimesOnNonBookableDay(t *testing.T) {
	e := newTestEngine(t, defaultConfig(), &fakeLookup{})

	saturday := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	times, err := e.FreeTimes(context.Background(), saturday)
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestIsSlotFree(t *testing.T) {
	lookup := &fakeLookup{booked: map[string][]string{
		"2026-01-05": {"11:00"},
	}}
	e := newTestEngine(t, defaultConfig(), lookup)

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	free, err := e.IsSlotFree(context.Background(), day, "11:00")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = e.IsSlotFree(context.Background(), day, "11:30")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestFormatDateES(t *testing.T) {
	d := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "5 de enero de 2026", FormatDateES(d))
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad start", func(c *Config) { c.DayStart = "25:99" }},
		{"end before start", func(c *Config) { c.DayEnd = "09:00" }},
		{"zero increment", func(c *Config) { c.SlotMinutes = 0 }},
		{"lookahead below target", func(c *Config) { c.LookaheadDays = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg, &fakeLookup{}, zap.NewNop())
			assert.Error(t, err)
		})
	}
}
