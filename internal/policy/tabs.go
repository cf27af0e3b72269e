package policy

import (
	"fmt"
	"time"

	"studiobooking/internal/domain"
)

type Tab string

const (
	TabUpcoming         Tab = "upcoming"
	TabPendingApprovals Tab = "pending_approvals"
	TabRecentActivity   Tab = "recent_activity"
)

const recentActivityLimit = 20

var tabOrder = []Tab{TabUpcoming, TabPendingApprovals, TabRecentActivity}

var tabTitles = map[Tab]string{
	TabUpcoming:         "Upcoming Bookings",
	TabPendingApprovals: "Pending Approvals",
	TabRecentActivity:   "Recent Activity",
}

func (t Tab) Title() string { return tabTitles[t] }

func (t Tab) visibleTo(role domain.UserRole) bool {
	if t == TabPendingApprovals {
		return role == domain.RoleStaff || role == domain.RoleAdmin
	}
	_, ok := tabTitles[t]
	return ok
}

// TabsForRole lists the dashboard tabs role may open, in display order.
func TabsForRole(role domain.UserRole) []Tab {
	out := make([]Tab, 0, len(tabOrder))
	for _, t := range tabOrder {
		if t.visibleTo(role) {
			out = append(out, t)
		}
	}
	return out
}

// ParseTab accepts only tabs visible to role.
func ParseTab(s string, role domain.UserRole) (Tab, error) {
	t := Tab(s)
	if !t.visibleTo(role) {
		return "", fmt.Errorf("%w: tab %q", ErrForbidden, s)
	}
	return t, nil
}

// Filter is the booking query behind the tab.
func (t Tab) Filter(now time.Time) domain.BookingFilter {
	switch t {
	case TabUpcoming:
		from := now.UTC()
		return domain.BookingFilter{Statuses: domain.ActiveStatuses, StartFrom: &from}
	case TabPendingApprovals:
		return domain.BookingFilter{Statuses: []domain.BookingStatus{domain.BookingPending}}
	case TabRecentActivity:
		return domain.BookingFilter{OrderByUpdate: true, Limit: recentActivityLimit}
	}
	return domain.BookingFilter{}
}
