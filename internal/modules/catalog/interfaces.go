package catalog

import (
	"context"

	"github.com/google/uuid"

	"studiobooking/internal/domain"
	"studiobooking/internal/scheduling"
)

type StudioRepository interface {
	GetStudio(ctx context.Context, id uuid.UUID) (*domain.Studio, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Studio, error)
	Create(ctx context.Context, s *domain.Studio) error
	Update(ctx context.Context, s *domain.Studio) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type EquipmentRepository interface {
	List(ctx context.Context, studioID *uuid.UUID) ([]domain.Equipment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	Create(ctx context.Context, e *domain.Equipment) error
	Update(ctx context.Context, e *domain.Equipment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BookingReader interface {
	ListActiveBookingsForStudio(ctx context.Context, studioID uuid.UUID, excludeID *uuid.UUID) ([]domain.Booking, error)
}

type ConflictFinder interface {
	FindConflict(ctx context.Context, studioID uuid.UUID, interval scheduling.Interval, excludeID *uuid.UUID) (*domain.Booking, error)
}
