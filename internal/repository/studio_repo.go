package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
)

type StudioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) *StudioRepository {
	return &StudioRepository{db: db}
}

// GetStudio fetches a studio with its equipment.
func (r *StudioRepository) GetStudio(ctx context.Context, id uuid.UUID) (*domain.Studio, error) {
	var studio domain.Studio

	err := database.Conn(ctx, r.db).
		Preload("Equipment").
		Where("id = ?", id).
		First(&studio).Error
	if err != nil {
		return nil, notFound(database.TranslateError(err), "studio", id)
	}
	return &studio, nil
}

// List returns studios by name, only active ones when activeOnly is set.
func (r *StudioRepository) List(ctx context.Context, activeOnly bool) ([]domain.Studio, error) {
	q := database.Conn(ctx, r.db).Preload("Equipment")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var studios []domain.Studio
	if err := q.Order("name ASC").Find(&studios).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return studios, nil
}

func (r *StudioRepository) Create(ctx context.Context, s *domain.Studio) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(s).Error)
}

// Update writes every column of s, including zero values.
func (r *StudioRepository) Update(ctx context.Context, s *domain.Studio) error {
	res := database.Conn(ctx, r.db).Model(&domain.Studio{}).Where("id = ?", s.ID).
		Select("name", "description", "location", "hourly_rate", "capacity", "image_url", "is_active").
		Updates(s)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "studio", s.ID)
	}
	return nil
}

// Deactivate hides a studio from new bookings; existing bookings are kept.
func (r *StudioRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := database.Conn(ctx, r.db).Model(&domain.Studio{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "studio", id)
	}
	return nil
}
