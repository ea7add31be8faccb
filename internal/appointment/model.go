package appointment

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ingenieria-ia/booking-chat-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "appointment not found")
	ErrSlotTaken     = apperror.New(http.StatusConflict, "slot already booked")
	ErrInvalidStatus = apperror.New(http.StatusBadRequest, "invalid appointment status")
	ErrInvalidSlot   = apperror.New(http.StatusBadRequest, "invalid date or time")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Appointment is one confirmed consulting appointment. Date carries the
// calendar day only; Time is the "HH:MM" slot within business hours. Phone
// may be empty, meaning the caller declined to provide one.
type Appointment struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Date      time.Time
	Time      string
	Service   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filter struct {
	Email     string
	Service   string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
