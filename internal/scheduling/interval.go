// Package scheduling holds the booking rules for studios: half-open interval
// overlap, status-aware conflict detection, duration pricing and the
// create/update/delete lifecycle. Persistence, authorization and transport are
// supplied by the caller through the interfaces in service.go.
package scheduling

import (
	"fmt"
	"time"

	"studiobooking/internal/domain"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start.UTC(), End: end.UTC()}
}

// BookingInterval returns the interval a booking occupies.
func BookingInterval(b *domain.Booking) Interval {
	return NewInterval(b.StartTime, b.EndTime)
}

func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInterval)
	}
	if !i.Start.Before(i.End) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidInterval, i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether i and o share any instant. An interval ending
// exactly when the other starts does not overlap it.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Hours is the duration as fractional hours (seconds / 3600), unrounded.
func (i Interval) Hours() float64 {
	return i.Duration().Seconds() / 3600
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}
