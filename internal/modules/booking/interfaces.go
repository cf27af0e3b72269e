package booking

import (
	"context"

	"github.com/google/uuid"

	"studiobooking/internal/domain"
	"studiobooking/internal/scheduling"
)

// Scheduler is the booking lifecycle, implemented by *scheduling.Service.
type Scheduler interface {
	CreateBooking(ctx context.Context, req scheduling.CreateRequest) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, changes scheduling.Changes) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

// BookingRepository defines the read side used for listings and dashboards
type BookingRepository interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	Count(ctx context.Context, f domain.BookingFilter) (int64, error)
}

type UserDirectory interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
}

// Recorder receives booking events; *metrics.Metrics implements it.
type Recorder interface {
	BookingCreated()
	BookingConflict()
	BookingRetry()
}

type nopRecorder struct{}

func (nopRecorder) BookingCreated()  {}
func (nopRecorder) BookingConflict() {}
func (nopRecorder) BookingRetry()    {}
