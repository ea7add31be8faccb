// Package metrics defines the counter sink the chat pipeline reports into.
// Callers receive a Sink by injection; there is no package-level state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Sink receives conversation and booking events. Implementations must be
// safe for concurrent use.
type Sink interface {
	MessageHandled(route string)
	BookingStarted()
	BookingConfirmed()
	BookingCancelled()
	SlotConflict()
}

// Routes reported through MessageHandled.
const (
	RouteBooking   = "booking"
	RouteAssistant = "assistant"
)

type promSink struct {
	messages  *prometheus.CounterVec
	started   prometheus.Counter
	confirmed prometheus.Counter
	cancelled prometheus.Counter
	conflicts prometheus.Counter
}

// NewPrometheus builds a Sink backed by Prometheus counters and registers
// them on reg.
func NewPrometheus(reg prometheus.Registerer) Sink {
	s := &promSink{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages handled, labelled by route.",
		}, []string{"route"}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_started_total",
			Help: "Booking dialogues started.",
		}),
		confirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_confirmed_total",
			Help: "Bookings confirmed and persisted.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Booking dialogues cancelled at confirmation.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_slot_conflicts_total",
			Help: "Confirmations that failed because the slot was taken.",
		}),
	}
	reg.MustRegister(s.messages, s.started, s.confirmed, s.cancelled, s.conflicts)
	return s
}

func (s *promSink) MessageHandled(route string) { s.messages.WithLabelValues(route).Inc() }
func (s *promSink) BookingStarted()             { s.started.Inc() }
func (s *promSink) BookingConfirmed()           { s.confirmed.Inc() }
func (s *promSink) BookingCancelled()           { s.cancelled.Inc() }
func (s *promSink) SlotConflict()               { s.conflicts.Inc() }

type nopSink struct{}

// Nop returns a Sink that discards every event. Used in tests.
func Nop() Sink { return nopSink{} }

func (nopSink) MessageHandled(string) {}
func (nopSink) BookingStarted()       {}
func (nopSink) BookingConfirmed()     {}
func (nopSink) BookingCancelled()     {}
func (nopSink) SlotConflict()         {}
