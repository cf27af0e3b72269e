package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Studio struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null" validate:"required,max=120"`
	Description string    `json:"description" gorm:"type:text"`
	Location    string    `json:"location" validate:"max=255"`
	HourlyRate  float64   `json:"hourly_rate" gorm:"not null" validate:"gte=0"`
	Capacity    int       `json:"capacity" gorm:"not null;default:1" validate:"gt=0"`
	ImageURL    string    `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Equipment []Equipment `json:"equipment,omitempty" gorm:"foreignKey:StudioID"`
}

func (s *Studio) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
