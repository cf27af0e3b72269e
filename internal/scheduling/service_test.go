package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiobooking/internal/domain"
)

// memStore is an in-memory StudioCatalog and BookingStore.
type memStore struct {
	mu       sync.Mutex
	studios  map[uuid.UUID]*domain.Studio
	bookings map[uuid.UUID]*domain.Booking
}

func newMemStore() *memStore {
	return &memStore{
		studios:  map[uuid.UUID]*domain.Studio{},
		bookings: map[uuid.UUID]*domain.Booking{},
	}
}

func (m *memStore) addStudio(rate float64, active bool) *domain.Studio {
	s := &domain.Studio{ID: uuid.New(), Name: "Studio A", HourlyRate: rate, Capacity: 1, IsActive: active}
	m.studios[s.ID] = s
	return s
}

func (m *memStore) GetStudio(_ context.Context, id uuid.UUID) (*domain.Studio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.studios[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListActiveBookingsForStudio(_ context.Context, studioID uuid.UUID, excludeID *uuid.UUID) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.StudioID != studioID || !b.Status.IsActive() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memStore) GetBooking(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) InsertBooking(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	for i := range b.StaffAssignments {
		b.StaffAssignments[i].ID = uuid.New()
		b.StaffAssignments[i].BookingID = b.ID
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return b, nil
}

func (m *memStore) UpdateBooking(_ context.Context, id uuid.UUID, p domain.BookingPatch) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.StartTime != nil {
		b.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		b.EndTime = *p.EndTime
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) DeleteBooking(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

// lockingTx serializes whole operations, standing in for a database
// transaction.
type lockingTx struct {
	mu    sync.Mutex
	calls int
}

func (l *lockingTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return fn(ctx)
}

func setup(t *testing.T, rate float64) (*Service, *memStore, *domain.Studio) {
	t.Helper()
	store := newMemStore()
	studio := store.addStudio(rate, true)
	return NewService(store, store, &lockingTx{}), store, studio
}

func book(t *testing.T, svc *Service, studioID uuid.UUID, i Interval) *domain.Booking {
	t.Helper()
	b, err := svc.CreateBooking(context.Background(), CreateRequest{
		StudioID: studioID,
		ClientID: uuid.New(),
		Interval: i,
	})
	require.NoError(t, err)
	return b
}

func statusPtr(s domain.BookingStatus) *domain.BookingStatus { return &s }
func timePtr(t time.Time) *time.Time                        { return &t }

func TestCreateBooking_PricedAndPending(t *testing.T) {
	svc, _, studio := setup(t, 75)

	b := book(t, svc, studio.ID, iv(14, 0, 16, 0))

	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, 150.0, b.TotalPrice)
	assert.Equal(t, 75.0, b.HourlyRate)
	assert.Equal(t, studio.ID, b.StudioID)
	assert.Empty(t, b.StaffAssignments)
}

func TestCreateBooking_OverlapConflicts(t *testing.T) {
	svc, _, studio := setup(t, 75)
	first := book(t, svc, studio.ID, iv(14, 0, 16, 0))

	_, err := svc.CreateBooking(context.Background(), CreateRequest{
		StudioID: studio.ID,
		ClientID: uuid.New(),
		Interval: iv(15, 0, 15, 30),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchedulingConflict))
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.BookingID)
	assert.Equal(t, iv(14, 0, 16, 0), conflict.Interval)
}

func TestCreateBooking_DuplicateConflicts(t *testing.T) {
	svc, _, studio := setup(t, 50)
	book(t, svc, studio.ID, iv(10, 0, 11, 0))

	_, err := svc.CreateBooking(context.Background(), CreateRequest{
		StudioID: studio.ID, ClientID: uuid.New(), Interval: iv(10, 0, 11, 0),
	})
	assert.ErrorIs(t, err, ErrSchedulingConflict)
}

func TestCreateBooking_BackToBackSucceeds(t *testing.T) {
	svc, _, studio := setup(t, 50)
	book(t, svc, studio.ID, iv(10, 0, 11, 0))
	book(t, svc, studio.ID, iv(11, 0, 12, 0))
	book(t, svc, studio.ID, iv(9, 0, 10, 0))
}

func TestCreateBooking_OtherStudioIndependent(t *testing.T) {
	svc, store, studio := setup(t, 50)
	other := store.addStudio(80, true)

	book(t, svc, studio.ID, iv(10, 0, 11, 0))
	b := book(t, svc, other.ID, iv(10, 0, 11, 0))
	assert.Equal(t, 80.0, b.TotalPrice)
}

func TestCreateBooking_CancelledFreesSlot(t *testing.T) {
	svc, _, studio := setup(t, 50)
	first := book(t, svc, studio.ID, iv(10, 0, 12, 0))

	_, err := svc.UpdateBooking(context.Background(), first.ID, Changes{Status: statusPtr(domain.BookingCancelled)})
	require.NoError(t, err)

	book(t, svc, studio.ID, iv(10, 0, 12, 0))
}

func TestCreateBooking_CompletedFreesSlot(t *testing.T) {
	svc, _, studio := setup(t, 50)
	first := book(t, svc, studio.ID, iv(10, 0, 12, 0))

	_, err := svc.UpdateBooking(context.Background(), first.ID, Changes{Status: statusPtr(domain.BookingCompleted)})
	require.NoError(t, err)

	book(t, svc, studio.ID, iv(11, 0, 13, 0))
}

func TestCreateBooking_ConfirmedStillBlocks(t *testing.T) {
	svc, _, studio := setup(t, 50)
	first := book(t, svc, studio.ID, iv(10, 0, 12, 0))
	_, err := svc.UpdateBooking(context.Background(), first.ID, Changes{Status: statusPtr(domain.BookingConfirmed)})
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), CreateRequest{
		StudioID: studio.ID, ClientID: uuid.New(), Interval: iv(11, 0, 13, 0),
	})
	assert.ErrorIs(t, err, ErrSchedulingConflict)
}

func TestCreateBooking_Rejections(t *testing.T) {
	store := newMemStore()
	inactive := store.addStudio(50, false)
	svc := NewService(store, store, nil)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateRequest{StudioID: inactive.ID, ClientID: uuid.New(), Interval: iv(12, 0, 11, 0)})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.CreateBooking(ctx, CreateRequest{StudioID: inactive.ID, ClientID: uuid.New(), Interval: iv(10, 0, 11, 0)})
	assert.ErrorIs(t, err, ErrStudioInactive)

	_, err = svc.CreateBooking(ctx, CreateRequest{StudioID: uuid.New(), ClientID: uuid.New(), Interval: iv(10, 0, 11, 0)})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, store.bookings)
}

func TestCreateBooking_StaffAssignments(t *testing.T) {
	svc, _, studio := setup(t, 50)
	engineer, producer := uuid.New(), uuid.New()

	b, err := svc.CreateBooking(context.Background(), CreateRequest{
		StudioID: studio.ID,
		ClientID: uuid.New(),
		Interval: iv(10, 0, 11, 0),
		Staff: []StaffRequest{
			{StaffID: engineer},
			{StaffID: producer, Role: "Producer"},
			{StaffID: engineer, Role: "Assistant"},
		},
	})
	require.NoError(t, err)
	require.Len(t, b.StaffAssignments, 2)
	assert.Equal(t, engineer, b.StaffAssignments[0].StaffID)
	assert.Equal(t, DefaultStaffRole, b.StaffAssignments[0].Role)
	assert.Equal(t, "Producer", b.StaffAssignments[1].Role)
	assert.Equal(t, b.ID, b.StaffAssignments[1].BookingID)
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	svc, store, studio := setup(t, 50)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), CreateRequest{
				StudioID: studio.ID, ClientID: uuid.New(), Interval: iv(10, 0, 11, 0),
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrSchedulingConflict)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, store.bookings, 1)
}

func TestFindConflict(t *testing.T) {
	svc, _, studio := setup(t, 50)
	ctx := context.Background()
	first := book(t, svc, studio.ID, iv(10, 0, 12, 0))

	got, err := svc.FindConflict(ctx, studio.ID, iv(11, 0, 13, 0), nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = svc.FindConflict(ctx, studio.ID, iv(11, 0, 13, 0), &first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.FindConflict(ctx, studio.ID, iv(12, 0, 13, 0), nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.FindConflict(ctx, studio.ID, iv(13, 0, 12, 0), nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.FindConflict(ctx, uuid.New(), iv(10, 0, 11, 0), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBooking_MoveReprices(t *testing.T) {
	svc, _, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 0))
	assert.Equal(t, 60.0, b.TotalPrice)

	updated, err := svc.UpdateBooking(context.Background(), b.ID, Changes{End: timePtr(at(11, 30))})
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), updated.StartTime)
	assert.Equal(t, at(11, 30), updated.EndTime)
	assert.Equal(t, 90.0, updated.TotalPrice)
}

func TestUpdateBooking_UsesRateCapturedAtCreation(t *testing.T) {
	svc, store, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 0))

	store.studios[studio.ID].HourlyRate = 200

	updated, err := svc.UpdateBooking(context.Background(), b.ID, Changes{End: timePtr(at(12, 0))})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.TotalPrice)
}

func TestUpdateBooking_StatusOnlyKeepsPrice(t *testing.T) {
	svc, store, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 30))
	store.studios[studio.ID].HourlyRate = 10

	notes := "bring the Neumann"
	updated, err := svc.UpdateBooking(context.Background(), b.ID, Changes{
		Status: statusPtr(domain.BookingConfirmed),
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, 90.0, updated.TotalPrice)
}

func TestUpdateBooking_MoveIntoOccupiedSlot(t *testing.T) {
	svc, _, studio := setup(t, 60)
	first := book(t, svc, studio.ID, iv(10, 0, 11, 0))
	second := book(t, svc, studio.ID, iv(12, 0, 13, 0))

	_, err := svc.UpdateBooking(context.Background(), second.ID, Changes{Start: timePtr(at(10, 30))})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.BookingID)
}

func TestUpdateBooking_OverlapWithItselfAllowed(t *testing.T) {
	svc, _, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 12, 0))

	updated, err := svc.UpdateBooking(context.Background(), b.ID, Changes{
		Start: timePtr(at(11, 0)),
		End:   timePtr(at(13, 0)),
	})
	require.NoError(t, err)
	assert.Equal(t, at(11, 0), updated.StartTime)
}

func TestUpdateBooking_InvalidMergedInterval(t *testing.T) {
	svc, store, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 0))

	_, err := svc.UpdateBooking(context.Background(), b.ID, Changes{Start: timePtr(at(11, 0))})
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Equal(t, at(10, 0), store.bookings[b.ID].StartTime)
}

func TestUpdateBooking_ReactivationChecksConflicts(t *testing.T) {
	svc, _, studio := setup(t, 60)
	first := book(t, svc, studio.ID, iv(10, 0, 11, 0))
	_, err := svc.UpdateBooking(context.Background(), first.ID, Changes{Status: statusPtr(domain.BookingCancelled)})
	require.NoError(t, err)
	second := book(t, svc, studio.ID, iv(10, 0, 11, 0))

	_, err = svc.UpdateBooking(context.Background(), first.ID, Changes{Status: statusPtr(domain.BookingPending)})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, second.ID, conflict.BookingID)
}

func TestUpdateBooking_MovingInactiveBookingIgnoresConflicts(t *testing.T) {
	svc, _, studio := setup(t, 60)
	first := book(t, svc, studio.ID, iv(10, 0, 11, 0))
	old := book(t, svc, studio.ID, iv(12, 0, 13, 0))
	_, err := svc.UpdateBooking(context.Background(), old.ID, Changes{Status: statusPtr(domain.BookingCancelled)})
	require.NoError(t, err)

	moved, err := svc.UpdateBooking(context.Background(), old.ID, Changes{
		Start: timePtr(at(10, 0)),
		End:   timePtr(at(11, 30)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, moved.Status)
	assert.InDelta(t, 90.0, moved.TotalPrice, 1e-9)

	_, err = svc.UpdateBooking(context.Background(), old.ID, Changes{Status: statusPtr(domain.BookingConfirmed)})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.BookingID)
}

func TestUpdateBooking_Rejections(t *testing.T) {
	svc, _, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 0))

	_, err := svc.UpdateBooking(context.Background(), b.ID, Changes{Status: statusPtr("ARCHIVED")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateBooking(context.Background(), uuid.New(), Changes{Status: statusPtr(domain.BookingConfirmed)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBooking_EmptyChangesReturnsCurrent(t *testing.T) {
	svc, _, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 0))

	got, err := svc.UpdateBooking(context.Background(), b.ID, Changes{})
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.TotalPrice, got.TotalPrice)
}

func TestDeleteBooking(t *testing.T) {
	svc, _, studio := setup(t, 60)
	b := book(t, svc, studio.ID, iv(10, 0, 11, 0))

	require.NoError(t, svc.DeleteBooking(context.Background(), b.ID))
	assert.ErrorIs(t, svc.DeleteBooking(context.Background(), b.ID), ErrNotFound)

	book(t, svc, studio.ID, iv(10, 0, 11, 0))
}

func TestOperationsRunInTransaction(t *testing.T) {
	store := newMemStore()
	studio := store.addStudio(60, true)
	tx := &lockingTx{}
	svc := NewService(store, store, tx)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateRequest{StudioID: studio.ID, ClientID: uuid.New(), Interval: iv(10, 0, 11, 0)})
	require.NoError(t, err)
	_, err = svc.UpdateBooking(ctx, b.ID, Changes{Status: statusPtr(domain.BookingConfirmed)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBooking(ctx, b.ID))

	assert.Equal(t, 3, tx.calls)
}
