package auth

import (
	"context"
	"time"

	"tierraalta/internal/domain"
)

// UserRepositoryInterface lists the user storage the auth service needs.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, phone string) error
	SetLoginState(ctx context.Context, id int64, failedAttempts int, lockedUntil *time.Time) error
}

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}
