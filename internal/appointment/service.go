package appointment

import (
	"context"
	"time"
)

type BookRequest struct {
	Name    string
	Email   string
	Phone   string
	Date    time.Time
	Time    string
	Service string
}

type UpdateRequest struct {
	Name    *string
	Email   *string
	Phone   *string
	Date    *time.Time
	Time    *string
	Service *string
	Status  *string
}

type Service interface {
	// Book persists a new appointment for the given slot. It is the single
	// write path used by the chat flow; ErrSlotTaken means somebody else got
	// the slot first.
	Book(ctx context.Context, req BookRequest) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter Filter) ([]*Appointment, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Appointment, error)
	Delete(ctx context.Context, id string) error

	// BookedTimes reports the times already taken on a given day. It backs
	// the availability engine's booked-slot lookup.
	BookedTimes(ctx context.Context, date time.Time) ([]string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if req.Time == "" || req.Date.IsZero() {
		return nil, ErrInvalidSlot
	}

	a := &Appointment{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Date:    req.Date,
		Time:    req.Time,
		Service: req.Service,
		Status:  StatusPending,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}
	if req.Date != nil {
		a.Date = *req.Date
	}
	if req.Time != nil {
		a.Time = *req.Time
	}
	if req.Service != nil {
		a.Service = *req.Service
	}
	if req.Status != nil {
		st := Status(*req.Status)
		if st != StatusPending && st != StatusConfirmed && st != StatusCancelled {
			return nil, ErrInvalidStatus
		}
		a.Status = st
	}

	// The unique (date, time) index guards against moving an appointment
	// onto an occupied slot; the repository maps that to ErrSlotTaken.
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) BookedTimes(ctx context.Context, date time.Time) ([]string, error) {
	return s.repo.TimesForDate(ctx, date)
}
