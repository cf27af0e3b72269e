package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/policy"
	"studiobooking/internal/scheduling"
)

// RetryPolicy bounds how often a booking transaction is replayed after a
// serialization failure.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

type Service struct {
	scheduler Scheduler
	bookings  BookingRepository
	users     UserDirectory
	recorder  Recorder
	retry     RetryPolicy
	now       func() time.Time
}

func NewService(scheduler Scheduler, bookings BookingRepository, users UserDirectory, recorder Recorder, retry RetryPolicy) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		scheduler: scheduler,
		bookings:  bookings,
		users:     users,
		recorder:  recorder,
		retry:     retry,
		now:       time.Now,
	}
}

// CreateInput is a create request with ids already parsed.
type CreateInput struct {
	StudioID uuid.UUID
	ClientID uuid.UUID
	Start    time.Time
	End      time.Time
	Notes    string
	Staff    []scheduling.StaffRequest
}

func (s *Service) CreateBooking(ctx context.Context, actor policy.Actor, in CreateInput) (*domain.Booking, error) {
	if err := policy.Authorize(actor, policy.ActionCreateBooking, nil); err != nil {
		return nil, err
	}

	clientID := actor.UserID
	if in.ClientID != uuid.Nil && in.ClientID != actor.UserID {
		if actor.Role == domain.RoleClient {
			return nil, fmt.Errorf("%w: clients book for themselves", policy.ErrForbidden)
		}
		if err := s.checkUsers(ctx, []uuid.UUID{in.ClientID}, ErrInvalidClient); err != nil {
			return nil, err
		}
		clientID = in.ClientID
	}

	if err := s.checkStaff(ctx, in.Staff); err != nil {
		return nil, err
	}

	req := scheduling.CreateRequest{
		StudioID: in.StudioID,
		ClientID: clientID,
		Interval: scheduling.NewInterval(in.Start, in.End),
		Notes:    strings.TrimSpace(in.Notes),
		Staff:    in.Staff,
	}

	var created *domain.Booking
	err := s.withRetry(ctx, "create", func() error {
		var err error
		created, err = s.scheduler.CreateBooking(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.BookingCreated()
	log.Printf("booking_created booking_id=%s studio_id=%s client_id=%s start=%s end=%s total_price=%s",
		created.ID, created.StudioID, created.ClientID,
		created.StartTime.Format(time.RFC3339), created.EndTime.Format(time.RFC3339),
		scheduling.FormatPrice(created.TotalPrice))
	return created, nil
}

func (s *Service) GetBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionViewBooking, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings returns bookings matching f, narrowed by tab when set and
// always scoped to what actor may see.
func (s *Service) ListBookings(ctx context.Context, actor policy.Actor, f domain.BookingFilter, tab string) ([]domain.Booking, error) {
	if actor.IsZero() {
		return nil, policy.ErrUnauthorized
	}
	if tab != "" {
		t, err := policy.ParseTab(tab, actor.Role)
		if err != nil {
			return nil, err
		}
		f = mergeFilter(t.Filter(s.now()), f)
	}
	return s.bookings.List(ctx, policy.ScopeFilter(actor, f))
}

// mergeFilter lays explicit query filters over a tab's filter.
func mergeFilter(base, over domain.BookingFilter) domain.BookingFilter {
	if over.StudioID != nil {
		base.StudioID = over.StudioID
	}
	if over.ClientID != nil {
		base.ClientID = over.ClientID
	}
	if len(over.Statuses) > 0 {
		base.Statuses = over.Statuses
	}
	if over.StartFrom != nil {
		base.StartFrom = over.StartFrom
	}
	if over.EndTo != nil {
		base.EndTo = over.EndTo
	}
	if over.Limit > 0 {
		base.Limit = over.Limit
	}
	return base
}

func (s *Service) UpdateBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, changes scheduling.Changes) (*domain.Booking, error) {
	// Read outside the scheduler transaction: the check depends on the owner,
	// which never changes after creation.
	current, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.UpdateAction(changes.Status), current); err != nil {
		return nil, err
	}

	var updated *domain.Booking
	err = s.withRetry(ctx, "update", func() error {
		var err error
		updated, err = s.scheduler.UpdateBooking(ctx, id, changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	if updated.Status != current.Status {
		log.Printf("booking_status_changed booking_id=%s from=%s to=%s user_id=%s", id, current.Status, updated.Status, actor.UserID)
	}
	return updated, nil
}

func (s *Service) DeleteBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	// Same as UpdateBooking: only the immutable owner is checked.
	current, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDeleteBooking, current); err != nil {
		return err
	}

	err = s.withRetry(ctx, "delete", func() error {
		return s.scheduler.DeleteBooking(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Printf("booking_deleted booking_id=%s user_id=%s", id, actor.UserID)
	return nil
}

func (s *Service) Tabs(actor policy.Actor) []TabResponse {
	tabs := policy.TabsForRole(actor.Role)
	out := make([]TabResponse, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, TabResponse{ID: t, Title: t.Title()})
	}
	return out
}

// Summary counts the caller's upcoming bookings, pending approvals (staff and
// admins only) and today's confirmed revenue.
func (s *Service) Summary(ctx context.Context, actor policy.Actor) (*Summary, error) {
	if actor.IsZero() {
		return nil, policy.ErrUnauthorized
	}
	now := s.now().UTC()

	upcoming, err := s.bookings.Count(ctx, policy.ScopeFilter(actor, policy.TabUpcoming.Filter(now)))
	if err != nil {
		return nil, err
	}
	out := &Summary{Upcoming: upcoming}

	if _, err := policy.ParseTab(string(policy.TabPendingApprovals), actor.Role); err == nil {
		pending, err := s.bookings.Count(ctx, policy.ScopeFilter(actor, policy.TabPendingApprovals.Filter(now)))
		if err != nil {
			return nil, err
		}
		out.PendingApprovals = &pending
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	today, err := s.bookings.List(ctx, policy.ScopeFilter(actor, domain.BookingFilter{
		Statuses:  []domain.BookingStatus{domain.BookingConfirmed},
		StartFrom: &dayStart,
	}))
	if err != nil {
		return nil, err
	}
	var revenue float64
	for _, b := range today {
		if b.StartTime.Before(dayEnd) {
			revenue += b.TotalPrice
		}
	}
	out.TodayRevenue = scheduling.FormatPrice(revenue)
	return out, nil
}

// withRetry replays fn after serialization failures with linear backoff.
// Conflicts are counted, never retried.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if errors.Is(err, scheduling.ErrSchedulingConflict) {
			s.recorder.BookingConflict()
		}
		if err == nil || !errors.Is(err, database.ErrSerialization) || attempt >= s.retry.MaxRetries {
			return err
		}

		s.recorder.BookingRetry()
		log.Printf("booking_retry op=%s attempt=%d error=%q", op, attempt+1, err)

		wait := s.retry.Backoff * time.Duration(attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Service) checkStaff(ctx context.Context, staff []scheduling.StaffRequest) error {
	if len(staff) == 0 {
		return nil
	}
	// Nil ids are dropped by the scheduler, so they are not looked up.
	ids := make([]uuid.UUID, 0, len(staff))
	for _, st := range staff {
		if st.StaffID != uuid.Nil {
			ids = append(ids, st.StaffID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	isStaff := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		isStaff[u.ID] = u.Role == domain.RoleStaff || u.Role == domain.RoleAdmin
	}
	for _, id := range ids {
		if !isStaff[id] {
			return fmt.Errorf("%w: %s", ErrInvalidStaff, id)
		}
	}
	return nil
}

func (s *Service) checkUsers(ctx context.Context, ids []uuid.UUID, notFound error) error {
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(users) != len(ids) {
		return notFound
	}
	return nil
}
