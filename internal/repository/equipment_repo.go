package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) List(ctx context.Context, studioID *uuid.UUID) ([]domain.Equipment, error) {
	q := database.Conn(ctx, r.db)
	if studioID != nil {
		q = q.Where("studio_id = ?", *studioID)
	}

	var items []domain.Equipment
	if err := q.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return items, nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, notFound(database.TranslateError(err), "equipment", id)
	}
	return &e, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(e).Error)
}

func (r *EquipmentRepository) Update(ctx context.Context, e *domain.Equipment) error {
	res := database.Conn(ctx, r.db).Model(&domain.Equipment{}).Where("id = ?", e.ID).
		Select("studio_id", "name", "category", "quantity", "is_available").
		Updates(e)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "equipment", e.ID)
	}
	return nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&domain.Equipment{})
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "equipment", id)
	}
	return nil
}
