package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"tierraalta/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 7
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

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id int64, name, phone string) error {
	args := m.Called(ctx, id, name, phone)
	return args.Error(0)
}

func (m *mockUserRepo) SetLoginState(ctx context.Context, id int64, failedAttempts int, lockedUntil *time.Time) error {
	args := m.Called(ctx, id, failedAttempts, lockedUntil)
	return args.Error(0)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newService(users *mockUserRepo, tokens *mockJWTService) *Service {
	svc := NewService(users, tokens, bcrypt.MinCost, nil)
	svc.SetClock(func() time.Time { return testNow })
	return svc
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 3, Email: "ana@example.com", Name: "Ana", PasswordHash: string(hash), Role: domain.RoleUser}
}

func TestService_Register_Success(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockJWTService)

	users.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ana@example.com" && u.Role == domain.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("sunny-days")) == nil
	})).Return(nil)
	tokens.On("GenerateToken", int64(7), "USER").Return("signed-token", nil)

	session, err := newService(users, tokens).Register(context.Background(), RegisterRequest{
		Name: " Ana ", Email: " Ana@Example.com ", Password: "sunny-days",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", session.Token)
	assert.Equal(t, "Ana", session.User.Name)
	assert.Empty(t, session.User.PasswordHash)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockJWTService)
	users.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(true, nil)

	_, err := newService(users, tokens).Register(context.Background(), RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "sunny-days",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_Login_Success(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockJWTService)
	user := storedUser(t, "sunny-days")
	user.FailedLoginAttempts = 2

	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	users.On("SetLoginState", mock.Anything, int64(3), 0, (*time.Time)(nil)).Return(nil)
	tokens.On("GenerateToken", int64(3), "USER").Return("signed-token", nil)

	session, err := newService(users, tokens).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "sunny-days"})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", session.Token)
	assert.Empty(t, session.User.PasswordHash)
	assert.Zero(t, session.User.FailedLoginAttempts)
	users.AssertExpectations(t)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := newService(users, new(mockJWTService)).Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_WrongPasswordCountsAttempt(t *testing.T) {
	users := new(mockUserRepo)
	user := storedUser(t, "sunny-days")
	user.FailedLoginAttempts = 1

	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	users.On("SetLoginState", mock.Anything, int64(3), 2, (*time.Time)(nil)).Return(nil)

	_, err := newService(users, new(mockJWTService)).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "rainy-days"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	users.AssertExpectations(t)
}

func TestService_Login_FifthFailureLocks(t *testing.T) {
	users := new(mockUserRepo)
	user := storedUser(t, "sunny-days")
	user.FailedLoginAttempts = maxFailedLoginAttempts - 1

	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	users.On("SetLoginState", mock.Anything, int64(3), maxFailedLoginAttempts, mock.MatchedBy(func(until *time.Time) bool {
		return until != nil && until.Equal(testNow.Add(lockoutDuration))
	})).Return(nil)

	_, err := newService(users, new(mockJWTService)).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "rainy-days"})

	assert.ErrorIs(t, err, ErrAccountLocked)
	users.AssertExpectations(t)
}

func TestService_Login_LockedAccountRejectsCorrectPassword(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockJWTService)
	user := storedUser(t, "sunny-days")
	until := testNow.Add(time.Minute)
	user.LockedUntil = &until

	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)

	_, err := newService(users, tokens).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "sunny-days"})

	assert.ErrorIs(t, err, ErrAccountLocked)
	users.AssertNotCalled(t, "SetLoginState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_Login_StorageFailure(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, errors.New("connection reset"))

	_, err := newService(users, new(mockJWTService)).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "x"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_UpdateProfile(t *testing.T) {
	users := new(mockUserRepo)
	user := storedUser(t, "sunny-days")
	user.Phone = "+34600000000"
	name := "Ana María"

	users.On("GetByID", mock.Anything, int64(3)).Return(user, nil)
	users.On("UpdateProfile", mock.Anything, int64(3), "Ana María", "+34600000000").Return(nil)

	got, err := newService(users, new(mockJWTService)).UpdateProfile(context.Background(), 3, UpdateProfileRequest{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.Equal(t, "+34600000000", got.Phone)
	users.AssertExpectations(t)
}

func TestService_GetCurrentUser_NotFound(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := newService(users, new(mockJWTService)).GetCurrentUser(context.Background(), 9)

	assert.ErrorIs(t, err, ErrUserNotFound)
}
