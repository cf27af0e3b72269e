package auth

import (
	"context"

	"github.com/google/uuid"

	"studiobooking/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error
}

type tokenIssuer interface {
	GenerateToken(userID uuid.UUID, role string) (string, error)
}
