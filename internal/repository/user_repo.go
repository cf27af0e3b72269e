package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Create stores u with a normalized email. A taken email yields
// database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return database.TranslateError(database.Conn(ctx, r.db).Create(u).Error)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := database.Conn(ctx, r.db).
		Where("email = ?", normalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, notFound(database.TranslateError(err), "user", email)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(database.TranslateError(err), "user", id)
	}
	return &u, nil
}

// GetByIDs returns the users that exist among ids, in no particular order.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	if err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}

// List returns users ordered by email, filtered by role when role is set.
func (r *UserRepository) List(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	q := database.Conn(ctx, r.db)
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var users []domain.User
	if err := q.Order("email ASC").Find(&users).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	res := database.Conn(ctx, r.db).Model(&domain.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "user", id)
	}
	return nil
}
