package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Equipment may be unassigned (StudioID nil) and moved between studios.
type Equipment struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	StudioID    *uuid.UUID `json:"studio_id,omitempty" gorm:"type:uuid;index"`
	Name        string     `json:"name" gorm:"not null" validate:"required,max=120"`
	Category    string     `json:"category" validate:"max=64"`
	Quantity    int        `json:"quantity" gorm:"not null;default:1" validate:"gt=0"`
	IsAvailable bool       `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Equipment) TableName() string { return "equipment" }

func (e *Equipment) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
