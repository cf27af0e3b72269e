// Package policy decides who may do what with bookings and which dashboard
// tabs each role sees.
package policy

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"studiobooking/internal/domain"
)

var (
	ErrUnauthorized = errors.New("policy: authentication required")
	ErrForbidden    = errors.New("policy: forbidden")
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

func (a Actor) IsZero() bool { return a.UserID == uuid.Nil }

type Action string

const (
	ActionViewBooking   Action = "booking.view"
	ActionCreateBooking Action = "booking.create"
	ActionUpdateBooking Action = "booking.update"
	ActionCancelBooking Action = "booking.cancel"
	ActionSetStatus     Action = "booking.set_status"
	ActionDeleteBooking Action = "booking.delete"
	ActionManageCatalog Action = "catalog.manage"
	ActionManageUsers   Action = "users.manage"
)

// Authorize reports whether actor may perform action on b. b is nil for
// actions that do not target a booking. Owners may move, annotate and cancel
// their bookings; setting any other status is for staff and admins.
func Authorize(actor Actor, action Action, b *domain.Booking) error {
	if actor.IsZero() {
		return ErrUnauthorized
	}

	owner := b != nil && b.ClientID == actor.UserID
	staff := actor.Role == domain.RoleStaff || actor.Role == domain.RoleAdmin

	var ok bool
	switch action {
	case ActionCreateBooking:
		ok = true
	case ActionViewBooking, ActionUpdateBooking, ActionCancelBooking:
		ok = b != nil && (owner || staff)
	case ActionSetStatus:
		ok = b != nil && staff
	case ActionDeleteBooking:
		ok = b != nil && (owner || actor.Role == domain.RoleAdmin)
	case ActionManageCatalog, ActionManageUsers:
		ok = actor.Role == domain.RoleAdmin
	}

	if !ok {
		return fmt.Errorf("%w: %s may not %s", ErrForbidden, actor.Role, action)
	}
	return nil
}

// UpdateAction picks the action an update needs from the status it sets:
// none is a plain update, CANCELLED is a cancellation, anything else is a
// status change.
func UpdateAction(status *domain.BookingStatus) Action {
	switch {
	case status == nil:
		return ActionUpdateBooking
	case *status == domain.BookingCancelled:
		return ActionCancelBooking
	}
	return ActionSetStatus
}

// ScopeFilter restricts a listing to what actor may see.
func ScopeFilter(actor Actor, f domain.BookingFilter) domain.BookingFilter {
	if actor.Role != domain.RoleStaff && actor.Role != domain.RoleAdmin {
		id := actor.UserID
		f.ClientID = &id
	}
	return f
}
