package domain

import "time"

type UserRole string

const (
	RoleUser     UserRole = "USER"
	RoleOperator UserRole = "OPERATOR"
	RoleAdmin    UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may run hotel operations.
func (r UserRole) IsStaff() bool {
	return r == RoleOperator || r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"size:120"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;default:'USER'"`

	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated caller as seen by the core.
type Principal struct {
	ID   int64
	Role UserRole
}

func (p Principal) IsStaff() bool { return p.Role.IsStaff() }

// CanAccess reports whether the principal may act on a record owned by ownerID.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsStaff() || (p.ID != 0 && p.ID == ownerID)
}
