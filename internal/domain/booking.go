package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// ActiveStatuses are the statuses that still occupy studio time.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	StudioID   uuid.UUID     `json:"studio_id" gorm:"type:uuid;not null;index"`
	ClientID   uuid.UUID     `json:"client_id" gorm:"type:uuid;not null;index"`
	StartTime  time.Time     `json:"start_time" gorm:"not null;index"`
	EndTime    time.Time     `json:"end_time" gorm:"not null"`
	Status     BookingStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	TotalPrice float64       `json:"total_price" gorm:"not null"`
	HourlyRate float64       `json:"hourly_rate" gorm:"not null;default:0"` // rate captured at creation
	Notes      string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Связи
	Studio           *Studio           `json:"studio,omitempty" gorm:"foreignKey:StudioID"`
	Client           *User             `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	StaffAssignments []StaffAssignment `json:"staff_assignments" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// StaffAssignment has no lifecycle of its own: it is created with its booking
// and removed with it.
type StaffAssignment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	StaffID   uuid.UUID `json:"staff_id" gorm:"type:uuid;not null;index"`
	Role      string    `json:"role" gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at"`

	Staff *User `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
}

func (a *StaffAssignment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BookingPatch is a partial update; nil fields are left unchanged.
type BookingPatch struct {
	StartTime  *time.Time
	EndTime    *time.Time
	Status     *BookingStatus
	Notes      *string
	TotalPrice *float64
}

func (p BookingPatch) Empty() bool {
	return p.StartTime == nil && p.EndTime == nil && p.Status == nil && p.Notes == nil && p.TotalPrice == nil
}

// BookingFilter narrows booking listings. Zero values mean "no filter".
type BookingFilter struct {
	StudioID      *uuid.UUID
	ClientID      *uuid.UUID
	Statuses      []BookingStatus
	StartFrom     *time.Time
	EndTo         *time.Time
	OrderByUpdate bool
	Limit         int
}
