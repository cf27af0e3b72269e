package scheduling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval    = errors.New("scheduling: invalid interval")
	ErrNotFound           = errors.New("scheduling: not found")
	ErrStudioInactive     = errors.New("scheduling: studio is inactive")
	ErrInvalidStatus      = errors.New("scheduling: invalid booking status")
	ErrSchedulingConflict = errors.New("scheduling: conflicting booking")
)

// ConflictError names the active booking that blocks a requested interval.
// It matches ErrSchedulingConflict with errors.Is.
type ConflictError struct {
	BookingID uuid.UUID
	Interval  Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: booking %s occupies %s", ErrSchedulingConflict, e.BookingID, e.Interval)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSchedulingConflict
}
