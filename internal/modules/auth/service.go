package auth

import (
	"context"
	"strings"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/logging"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

// Service registers guests and issues bearer tokens.
type Service struct {
	users      UserRepositoryInterface
	tokens     tokenIssuer
	bcryptCost int
	log        *zerolog.Logger
	now        func() time.Time
}

func NewService(users UserRepositoryInterface, tokens tokenIssuer, bcryptCost int, log *zerolog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        logging.OrNop(log),
		now:        time.Now,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Register creates a guest account. Staff accounts are only created by the
// seeder.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err, "check email")
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err, "hash password")
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, apperror.Internal(err, "create user")
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Internal(err, "issue token")
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered")
	user.PasswordHash = ""
	return &Session{Token: token, User: user}, nil
}

// Login checks the password and issues a token. Five wrong passwords in a row
// lock the account for fifteen minutes.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal(err, "load user")
	}

	now := s.now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		failed := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if failed >= maxFailedLoginAttempts {
			until := now.Add(lockoutDuration)
			lockedUntil = &until
		}
		if err := s.users.SetLoginState(ctx, user.ID, failed, lockedUntil); err != nil {
			return nil, apperror.Internal(err, "record failed login")
		}
		if lockedUntil != nil {
			s.log.Warn().Int64("user_id", user.ID).Time("locked_until", *lockedUntil).Msg("account locked")
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.SetLoginState(ctx, user.ID, 0, nil); err != nil {
			return nil, apperror.Internal(err, "reset login state")
		}
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Internal(err, "issue token")
	}

	user.PasswordHash = ""
	return &Session{Token: token, User: user}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal(err, "load user")
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.users.UpdateProfile(ctx, user.ID, user.Name, user.Phone); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal(err, "update profile")
	}
	return user, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
