package http

import (
	"time"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
)

// ListAppointmentsRequest defines query parameters for the admin list view.
type ListAppointmentsRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Email     string `form:"email"`
	Service   string `form:"service"`
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	DateFrom  string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo    string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=date time created_at status"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// Filter converts the request into the service-level filter.
func (r *ListAppointmentsRequest) Filter() appointment.Filter {
	f := appointment.Filter{
		Email:     r.Email,
		Service:   r.Service,
		Status:    r.Status,
		Page:      r.Page,
		PageSize:  r.PageSize,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
	}
	if t, err := time.Parse("2006-01-02", r.DateFrom); err == nil && r.DateFrom != "" {
		f.DateFrom = &t
	}
	if t, err := time.Parse("2006-01-02", r.DateTo); err == nil && r.DateTo != "" {
		f.DateTo = &t
	}
	return f
}

type UpdateAppointmentRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Date    *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time    *string `json:"time" binding:"omitempty,datetime=15:04"`
	Service *string `json:"service"`
	Status  *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

// Update converts the request into the service-level partial update.
func (r *UpdateAppointmentRequest) Update() appointment.UpdateRequest {
	u := appointment.UpdateRequest{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Time:    r.Time,
		Service: r.Service,
		Status:  r.Status,
	}
	if r.Date != nil {
		if t, err := time.Parse("2006-01-02", *r.Date); err == nil {
			u.Date = &t
		}
	}
	return u
}

type AppointmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Date:      a.Date.Format("2006-01-02"),
		Time:      a.Time,
		Service:   a.Service,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
