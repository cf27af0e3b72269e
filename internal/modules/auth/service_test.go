package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/repository"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

type mockJWT struct {
	mock.Mock
}

func (m *mockJWT) GenerateToken(userID uuid.UUID, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func TestRegister_CreatesClient(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockJWT)
	svc := NewService(users, tokens)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@example.com" && u.Role == domain.RoleClient &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
	})).Return(nil)
	tokens.On("GenerateToken", mock.Anything, "CLIENT").Return("tok", nil)

	user, token, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "New",
		Email:     " New@Example.com ",
		Password:  "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, domain.RoleClient, user.Role)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewService(users, new(mockJWT))

	users.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", database.ErrDuplicate))

	_, _, err := svc.Register(context.Background(), RegisterRequest{FirstName: "A", Email: "a@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	user := &domain.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: string(hash), Role: domain.RoleStaff}

	users := new(mockUserRepo)
	tokens := new(mockJWT)
	svc := NewService(users, tokens)

	users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
	tokens.On("GenerateToken", user.ID, "STAFF").Return("tok", nil)

	got, token, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "tok", token)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateRole(t *testing.T) {
	id := uuid.New()
	users := new(mockUserRepo)
	svc := NewService(users, new(mockJWT))

	users.On("UpdateRole", mock.Anything, id, domain.RoleStaff).Return(nil)
	users.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id, Role: domain.RoleStaff}, nil)

	user, err := svc.UpdateRole(context.Background(), id, "staff")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, user.Role)

	_, err = svc.UpdateRole(context.Background(), id, "owner")
	assert.ErrorIs(t, err, ErrInvalidRole)

	missing := uuid.New()
	users.On("UpdateRole", mock.Anything, missing, domain.RoleAdmin).Return(repository.ErrNotFound)
	_, err = svc.UpdateRole(context.Background(), missing, "ADMIN")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewService(users, new(mockJWT))

	users.On("List", mock.Anything, domain.RoleStaff).Return([]domain.User{{Email: "s@example.com"}}, nil)
	users.On("List", mock.Anything, domain.UserRole("")).Return([]domain.User{}, errors.New("db down"))

	got, err := svc.ListUsers(context.Background(), "staff")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListUsers(context.Background(), "")
	assert.Error(t, err)

	_, err = svc.ListUsers(context.Background(), "boss")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
