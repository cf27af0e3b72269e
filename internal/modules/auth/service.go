package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/repository"
)

// Service contains all business logic for authentication
type Service struct {
	users UserRepositoryInterface
	jwt   tokenIssuer
}

func NewService(users UserRepositoryInterface, jwt tokenIssuer) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates a CLIENT account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error) {
	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         domain.RoleClient,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, "", ErrEmailAlreadyExists
		}
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ListUsers returns all users, or only those with role when it is not empty.
func (s *Service) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	var r domain.UserRole
	if role != "" {
		var ok bool
		if r, ok = domain.ParseUserRole(strings.ToUpper(role)); !ok {
			return nil, ErrInvalidRole
		}
	}
	return s.users.List(ctx, r)
}

func (s *Service) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error) {
	r, ok := domain.ParseUserRole(strings.ToUpper(strings.TrimSpace(role)))
	if !ok {
		return nil, ErrInvalidRole
	}

	if err := s.users.UpdateRole(ctx, userID, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetCurrentUser(ctx, userID)
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
