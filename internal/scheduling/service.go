package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiobooking/internal/domain"
)

// DefaultStaffRole is assigned to staff requested without an explicit role.
const DefaultStaffRole = "Engineer"

// StudioCatalog resolves studios. GetStudio returns an error matching
// ErrNotFound when the studio does not exist.
type StudioCatalog interface {
	GetStudio(ctx context.Context, id uuid.UUID) (*domain.Studio, error)
}

// BookingStore persists bookings. Lookups of missing rows return errors
// matching ErrNotFound; returned bookings carry their staff assignments.
type BookingStore interface {
	// ListActiveBookingsForStudio returns PENDING and CONFIRMED bookings of
	// the studio, skipping excludeID when given.
	ListActiveBookingsForStudio(ctx context.Context, studioID uuid.UUID, excludeID *uuid.UUID) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	InsertBooking(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, patch domain.BookingPatch) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

// Transactor runs fn so that the reads and writes it performs through the
// stores are serializable with respect to other calls. Store calls made with
// the ctx passed to fn take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type StaffRequest struct {
	StaffID uuid.UUID
	Role    string
}

type CreateRequest struct {
	StudioID uuid.UUID
	ClientID uuid.UUID
	Interval Interval
	Notes    string
	Staff    []StaffRequest
}

// Changes is a booking update. A nil field is left as is; Start and End may
// be given independently.
type Changes struct {
	Start  *time.Time
	End    *time.Time
	Status *domain.BookingStatus
	Notes  *string
}

type Service struct {
	studios  StudioCatalog
	bookings BookingStore
	tx       Transactor
}

// NewService builds the scheduler. A nil tx runs operations without a
// transaction, which is only safe for single-writer stores.
func NewService(studios StudioCatalog, bookings BookingStore, tx Transactor) *Service {
	if tx == nil {
		tx = passthroughTransactor{}
	}
	return &Service{studios: studios, bookings: bookings, tx: tx}
}

// FindConflict returns an active booking of the studio overlapping interval,
// or nil when the interval is free. It has no side effects.
func (s *Service) FindConflict(ctx context.Context, studioID uuid.UUID, interval Interval, excludeID *uuid.UUID) (*domain.Booking, error) {
	interval = NewInterval(interval.Start, interval.End)
	if err := interval.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.studios.GetStudio(ctx, studioID); err != nil {
		return nil, err
	}
	return s.findConflict(ctx, studioID, interval, excludeID)
}

func (s *Service) findConflict(ctx context.Context, studioID uuid.UUID, interval Interval, excludeID *uuid.UUID) (*domain.Booking, error) {
	active, err := s.bookings.ListActiveBookingsForStudio(ctx, studioID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}

	for i := range active {
		b := &active[i]
		if !b.Status.IsActive() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if BookingInterval(b).Overlaps(interval) {
			return b, nil
		}
	}
	return nil, nil
}

func conflictWith(b *domain.Booking) *ConflictError {
	return &ConflictError{BookingID: b.ID, Interval: BookingInterval(b)}
}

// CreateBooking reserves interval in a studio for a client. The new booking
// is PENDING and priced at the studio's current hourly rate.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*domain.Booking, error) {
	interval := NewInterval(req.Interval.Start, req.Interval.End)
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		studio, err := s.studios.GetStudio(ctx, req.StudioID)
		if err != nil {
			return err
		}
		if !studio.IsActive {
			return fmt.Errorf("%w: %s", ErrStudioInactive, studio.ID)
		}

		conflict, err := s.findConflict(ctx, studio.ID, interval, nil)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflictWith(conflict)
		}

		b := &domain.Booking{
			StudioID:         studio.ID,
			ClientID:         req.ClientID,
			StartTime:        interval.Start,
			EndTime:          interval.End,
			Status:           domain.BookingPending,
			HourlyRate:       studio.HourlyRate,
			TotalPrice:       Price(studio.HourlyRate, interval),
			Notes:            req.Notes,
			StaffAssignments: staffAssignments(req.Staff),
		}

		created, err = s.bookings.InsertBooking(ctx, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// staffAssignments keeps the first request per staff member.
func staffAssignments(staff []StaffRequest) []domain.StaffAssignment {
	out := make([]domain.StaffAssignment, 0, len(staff))
	seen := make(map[uuid.UUID]bool, len(staff))
	for _, st := range staff {
		if st.StaffID == uuid.Nil || seen[st.StaffID] {
			continue
		}
		seen[st.StaffID] = true

		role := strings.TrimSpace(st.Role)
		if role == "" {
			role = DefaultStaffRole
		}
		out = append(out, domain.StaffAssignment{StaffID: st.StaffID, Role: role})
	}
	return out
}

// UpdateBooking applies changes to a booking. Moving either bound of an
// active booking re-runs conflict detection against the other active bookings
// of the studio; any move reprices at the rate captured when the booking was
// created. Status and notes are applied verbatim and never reprice.
func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, changes Changes) (*domain.Booking, error) {
	if changes.Status != nil && !changes.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *changes.Status)
	}

	var updated *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetBooking(ctx, id)
		if err != nil {
			return err
		}

		patch := domain.BookingPatch{Status: changes.Status, Notes: changes.Notes}
		interval := BookingInterval(current)
		moved := changes.Start != nil || changes.End != nil
		if changes.Start != nil {
			interval.Start = changes.Start.UTC()
		}
		if changes.End != nil {
			interval.End = changes.End.UTC()
		}

		status := current.Status
		if changes.Status != nil {
			status = *changes.Status
		}
		reactivated := !current.Status.IsActive() && status.IsActive()

		if moved {
			if err := interval.Validate(); err != nil {
				return err
			}
			price := Price(current.HourlyRate, interval)
			patch.StartTime = &interval.Start
			patch.EndTime = &interval.End
			patch.TotalPrice = &price
		}

		// Only an active result occupies time. A booking returning to an
		// active status must not land on a slot taken while it was inactive.
		if status.IsActive() && (moved || reactivated) {
			excludeID := current.ID
			conflict, err := s.findConflict(ctx, current.StudioID, interval, &excludeID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return conflictWith(conflict)
			}
		}

		if patch.Empty() {
			updated = current
			return nil
		}
		updated, err = s.bookings.UpdateBooking(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBooking removes a booking together with its staff assignments.
func (s *Service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.bookings.DeleteBooking(ctx, id)
	})
}
