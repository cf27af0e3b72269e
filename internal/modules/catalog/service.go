package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiobooking/internal/domain"
	"studiobooking/internal/pkg/validator"
	"studiobooking/internal/scheduling"
)

type Service struct {
	studios   StudioRepository
	equipment EquipmentRepository
	bookings  BookingReader
	conflicts ConflictFinder
	window    DayWindow
}

func NewService(
	studios StudioRepository,
	equipment EquipmentRepository,
	bookings BookingReader,
	conflicts ConflictFinder,
	window DayWindow,
) *Service {
	return &Service{
		studios:   studios,
		equipment: equipment,
		bookings:  bookings,
		conflicts: conflicts,
		window:    window,
	}
}

func validate(v any) error {
	if fields := validator.Validate(v); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

/* ---------- STUDIOS ---------- */

func (s *Service) ListStudios(ctx context.Context, activeOnly bool) ([]domain.Studio, error) {
	return s.studios.List(ctx, activeOnly)
}

func (s *Service) GetStudio(ctx context.Context, id uuid.UUID) (*domain.Studio, error) {
	return s.studios.GetStudio(ctx, id)
}

func (s *Service) CreateStudio(ctx context.Context, req CreateStudioRequest) (*domain.Studio, error) {
	studio := &domain.Studio{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    req.Location,
		HourlyRate:  req.HourlyRate,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if studio.Capacity == 0 {
		studio.Capacity = 1
	}
	if req.IsActive != nil {
		studio.IsActive = *req.IsActive
	}

	if err := validate(studio); err != nil {
		return nil, err
	}
	if err := s.studios.Create(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

// UpdateStudio applies the present fields. A new hourly rate applies to
// bookings created afterwards only.
func (s *Service) UpdateStudio(ctx context.Context, id uuid.UUID, req UpdateStudioRequest) (*domain.Studio, error) {
	studio, err := s.studios.GetStudio(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		studio.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		studio.Description = *req.Description
	}
	if req.Location != nil {
		studio.Location = *req.Location
	}
	if req.HourlyRate != nil {
		studio.HourlyRate = *req.HourlyRate
	}
	if req.Capacity != nil {
		studio.Capacity = *req.Capacity
	}
	if req.ImageURL != nil {
		studio.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		studio.IsActive = *req.IsActive
	}

	if err := validate(studio); err != nil {
		return nil, err
	}
	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

// DeactivateStudio closes a studio to new bookings. Existing bookings stay.
func (s *Service) DeactivateStudio(ctx context.Context, id uuid.UUID) error {
	return s.studios.Deactivate(ctx, id)
}

// EstimatePrice quotes an interval at the studio's current rate and reports
// whether the interval is free.
func (s *Service) EstimatePrice(ctx context.Context, studioID uuid.UUID, start, end time.Time) (*PriceEstimate, error) {
	interval := scheduling.NewInterval(start, end)
	if err := interval.Validate(); err != nil {
		return nil, err
	}
	studio, err := s.studios.GetStudio(ctx, studioID)
	if err != nil {
		return nil, err
	}

	price := scheduling.Price(studio.HourlyRate, interval)
	est := &PriceEstimate{
		StudioID:   studio.ID.String(),
		StartTime:  interval.Start,
		EndTime:    interval.End,
		Hours:      interval.Hours(),
		HourlyRate: studio.HourlyRate,
		TotalPrice: price,
		Formatted:  scheduling.FormatPrice(price),
		Available:  true,
	}

	conflict, err := s.conflicts.FindConflict(ctx, studio.ID, interval, nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		est.Available = false
		est.ConflictingBookingID = conflict.ID.String()
	}
	return est, nil
}

// Availability lists busy and free time on date (YYYY-MM-DD, UTC) within the
// studio day window.
func (s *Service) Availability(ctx context.Context, studioID uuid.UUID, date string) (*Availability, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if _, err := s.studios.GetStudio(ctx, studioID); err != nil {
		return nil, err
	}

	active, err := s.bookings.ListActiveBookingsForStudio(ctx, studioID, nil)
	if err != nil {
		return nil, err
	}
	busy := make([]scheduling.Interval, 0, len(active))
	for i := range active {
		busy = append(busy, scheduling.BookingInterval(&active[i]))
	}

	window := s.window.On(day)
	merged := busyWithin(window, busy)
	free := subtractBusy(window, merged)

	out := &Availability{
		StudioID: studioID.String(),
		Date:     date,
		Open:     window.Start,
		Close:    window.End,
		Busy:     make([]TimeSlot, 0, len(merged)),
		Free:     make([]TimeSlot, 0, len(free)),
	}
	for _, b := range merged {
		out.Busy = append(out.Busy, slotOf(b))
	}
	for _, f := range free {
		out.Free = append(out.Free, slotOf(f))
	}
	return out, nil
}

/* ---------- EQUIPMENT ---------- */

func (s *Service) ListEquipment(ctx context.Context, studioID *uuid.UUID) ([]domain.Equipment, error) {
	return s.equipment.List(ctx, studioID)
}

func (s *Service) CreateEquipment(ctx context.Context, req EquipmentRequest) (*domain.Equipment, error) {
	e := &domain.Equipment{IsAvailable: true}
	if err := s.applyEquipment(ctx, e, req); err != nil {
		return nil, err
	}
	if err := s.equipment.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) UpdateEquipment(ctx context.Context, id uuid.UUID, req EquipmentRequest) (*domain.Equipment, error) {
	e, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEquipment(ctx, e, req); err != nil {
		return nil, err
	}
	if err := s.equipment.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	return s.equipment.Delete(ctx, id)
}

func (s *Service) applyEquipment(ctx context.Context, e *domain.Equipment, req EquipmentRequest) error {
	e.Name = strings.TrimSpace(req.Name)
	e.Category = strings.TrimSpace(req.Category)
	e.Quantity = req.Quantity
	if e.Quantity == 0 {
		e.Quantity = 1
	}
	if req.IsAvailable != nil {
		e.IsAvailable = *req.IsAvailable
	}

	e.StudioID = nil
	if req.StudioID != nil && *req.StudioID != "" {
		id, err := uuid.Parse(*req.StudioID)
		if err != nil {
			return &ValidationError{Fields: map[string]string{"studio_id": "uuid"}}
		}
		if _, err := s.studios.GetStudio(ctx, id); err != nil {
			return err
		}
		e.StudioID = &id
	}
	return validate(e)
}
