package catalog

import (
	"time"

	"studiobooking/internal/scheduling"
)

type CreateStudioRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	HourlyRate  float64 `json:"hourly_rate"`
	Capacity    int     `json:"capacity"`
	ImageURL    string  `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateStudioRequest changes only the fields that are present.
type UpdateStudioRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Capacity    *int     `json:"capacity"`
	ImageURL    *string  `json:"image_url"`
	IsActive    *bool    `json:"is_active"`
}

type EquipmentRequest struct {
	StudioID    *string `json:"studio_id"`
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	IsAvailable *bool   `json:"is_available"`
}

type PriceEstimate struct {
	StudioID   string    `json:"studio_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Hours      float64   `json:"hours"`
	HourlyRate float64   `json:"hourly_rate"`
	TotalPrice float64   `json:"total_price"`
	Formatted  string    `json:"formatted_price"`
	Available  bool      `json:"available"`
	// Set when the interval is taken.
	ConflictingBookingID string `json:"conflicting_booking_id,omitempty"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Availability struct {
	StudioID string     `json:"studio_id"`
	Date     string     `json:"date"`
	Open     time.Time  `json:"open"`
	Close    time.Time  `json:"close"`
	Busy     []TimeSlot `json:"busy"`
	Free     []TimeSlot `json:"free"`
}

func slotOf(i scheduling.Interval) TimeSlot {
	return TimeSlot{Start: i.Start, End: i.End}
}
