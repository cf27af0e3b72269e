package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/scheduling"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db)
}

func hydrate(q *gorm.DB) *gorm.DB {
	return q.Preload("Studio").
		Preload("Client").
		Preload("StaffAssignments").
		Preload("StaffAssignments.Staff")
}

// ListActiveBookingsForStudio returns PENDING and CONFIRMED bookings of a
// studio ordered by start time. Overlap is decided by the caller. Inside a
// Postgres transaction the rows stay locked until it ends.
func (r *BookingRepository) ListActiveBookingsForStudio(ctx context.Context, studioID uuid.UUID, excludeID *uuid.UUID) ([]domain.Booking, error) {
	q := database.LockForUpdate(ctx, r.conn(ctx)).
		Where("studio_id = ? AND status IN ?", studioID, domain.ActiveStatuses)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var out []domain.Booking
	if err := q.Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return out, nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := hydrate(r.conn(ctx)).Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, notFound(database.TranslateError(err), "booking", id)
	}
	return &b, nil
}

// InsertBooking stores the booking with its staff assignments and returns it
// hydrated.
func (r *BookingRepository) InsertBooking(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if err := r.conn(ctx).Create(b).Error; err != nil {
		return nil, bookingWriteError(err)
	}
	return r.GetBooking(ctx, b.ID)
}

func (r *BookingRepository) UpdateBooking(ctx context.Context, id uuid.UUID, p domain.BookingPatch) (*domain.Booking, error) {
	updates := map[string]any{}
	if p.StartTime != nil {
		updates["start_time"] = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		updates["end_time"] = p.EndTime.UTC()
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	if p.Notes != nil {
		updates["notes"] = *p.Notes
	}
	if p.TotalPrice != nil {
		updates["total_price"] = *p.TotalPrice
	}

	if len(updates) > 0 {
		res := r.conn(ctx).Model(&domain.Booking{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, bookingWriteError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
		}
	}
	return r.GetBooking(ctx, id)
}

func (r *BookingRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	db := r.conn(ctx)
	if err := db.Where("booking_id = ?", id).Delete(&domain.StaffAssignment{}).Error; err != nil {
		return database.TranslateError(err)
	}
	res := db.Where("id = ?", id).Delete(&domain.Booking{})
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return nil
}

// List returns hydrated bookings matching f, by start time unless
// f.OrderByUpdate is set.
func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	q := hydrate(applyBookingFilter(r.conn(ctx).Model(&domain.Booking{}), f))
	if f.OrderByUpdate {
		q = q.Order("updated_at DESC")
	} else {
		q = q.Order("start_time ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []domain.Booking
	if err := q.Find(&out).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return out, nil
}

func (r *BookingRepository) Count(ctx context.Context, f domain.BookingFilter) (int64, error) {
	var n int64
	err := applyBookingFilter(r.conn(ctx).Model(&domain.Booking{}), f).Count(&n).Error
	return n, database.TranslateError(err)
}

func applyBookingFilter(q *gorm.DB, f domain.BookingFilter) *gorm.DB {
	if f.StudioID != nil {
		q = q.Where("bookings.studio_id = ?", *f.StudioID)
	}
	if f.ClientID != nil {
		q = q.Where("bookings.client_id = ?", *f.ClientID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("bookings.status IN ?", f.Statuses)
	}
	if f.StartFrom != nil {
		q = q.Where("bookings.start_time >= ?", f.StartFrom.UTC())
	}
	if f.EndTo != nil {
		q = q.Where("bookings.end_time <= ?", f.EndTo.UTC())
	}
	return q
}

// bookingWriteError turns the overlap constraint into a scheduling conflict.
func bookingWriteError(err error) error {
	err = database.TranslateError(err)
	if errors.Is(err, database.ErrConflictConstraint) {
		return fmt.Errorf("%w: %w", scheduling.ErrSchedulingConflict, err)
	}
	return err
}
