package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"studiobooking/internal/domain"
)

func TestAuthorize(t *testing.T) {
	owner := Actor{UserID: uuid.New(), Role: domain.RoleClient}
	stranger := Actor{UserID: uuid.New(), Role: domain.RoleClient}
	staff := Actor{UserID: uuid.New(), Role: domain.RoleStaff}
	admin := Actor{UserID: uuid.New(), Role: domain.RoleAdmin}
	b := &domain.Booking{ID: uuid.New(), ClientID: owner.UserID}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		allow  bool
	}{
		{"owner views", owner, ActionViewBooking, true},
		{"stranger views", stranger, ActionViewBooking, false},
		{"staff views", staff, ActionViewBooking, true},
		{"owner cancels", owner, ActionCancelBooking, true},
		{"stranger cancels", stranger, ActionCancelBooking, false},
		{"owner edits", owner, ActionUpdateBooking, true},
		{"stranger edits", stranger, ActionUpdateBooking, false},
		{"staff edits", staff, ActionUpdateBooking, true},
		{"admin edits", admin, ActionUpdateBooking, true},
		{"owner confirms", owner, ActionSetStatus, false},
		{"staff confirms", staff, ActionSetStatus, true},
		{"admin confirms", admin, ActionSetStatus, true},
		{"owner deletes", owner, ActionDeleteBooking, true},
		{"staff deletes", staff, ActionDeleteBooking, false},
		{"admin deletes", admin, ActionDeleteBooking, true},
		{"client creates", stranger, ActionCreateBooking, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.action, b)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorize_Management(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Role: domain.RoleAdmin}
	staff := Actor{UserID: uuid.New(), Role: domain.RoleStaff}

	assert.NoError(t, Authorize(admin, ActionManageCatalog, nil))
	assert.NoError(t, Authorize(admin, ActionManageUsers, nil))
	assert.ErrorIs(t, Authorize(staff, ActionManageCatalog, nil), ErrForbidden)
	assert.ErrorIs(t, Authorize(Actor{}, ActionCreateBooking, nil), ErrUnauthorized)
	assert.ErrorIs(t, Authorize(admin, ActionViewBooking, nil), ErrForbidden)
}

func TestUpdateAction(t *testing.T) {
	cancelled := domain.BookingCancelled
	confirmed := domain.BookingConfirmed

	assert.Equal(t, ActionUpdateBooking, UpdateAction(nil))
	assert.Equal(t, ActionCancelBooking, UpdateAction(&cancelled))
	assert.Equal(t, ActionSetStatus, UpdateAction(&confirmed))
}

func TestScopeFilter(t *testing.T) {
	client := Actor{UserID: uuid.New(), Role: domain.RoleClient}
	other := uuid.New()

	f := ScopeFilter(client, domain.BookingFilter{ClientID: &other})
	assert.Equal(t, client.UserID, *f.ClientID)

	f = ScopeFilter(Actor{UserID: uuid.New(), Role: domain.RoleStaff}, domain.BookingFilter{ClientID: &other})
	assert.Equal(t, other, *f.ClientID)
}

func TestTabsForRole(t *testing.T) {
	assert.Equal(t, []Tab{TabUpcoming, TabRecentActivity}, TabsForRole(domain.RoleClient))
	assert.Equal(t, []Tab{TabUpcoming, TabPendingApprovals, TabRecentActivity}, TabsForRole(domain.RoleStaff))
	assert.Equal(t, []Tab{TabUpcoming, TabPendingApprovals, TabRecentActivity}, TabsForRole(domain.RoleAdmin))
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("recent_activity", domain.RoleClient)
	assert.NoError(t, err)
	assert.Equal(t, TabRecentActivity, tab)

	_, err = ParseTab("pending_approvals", domain.RoleClient)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = ParseTab("2", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTabFilter(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	up := TabUpcoming.Filter(now)
	assert.Equal(t, domain.ActiveStatuses, up.Statuses)
	assert.Equal(t, now, *up.StartFrom)

	pending := TabPendingApprovals.Filter(now)
	assert.Equal(t, []domain.BookingStatus{domain.BookingPending}, pending.Statuses)

	recent := TabRecentActivity.Filter(now)
	assert.True(t, recent.OrderByUpdate)
	assert.Equal(t, recentActivityLimit, recent.Limit)

	assert.Equal(t, "Pending Approvals", TabPendingApprovals.Title())
}
