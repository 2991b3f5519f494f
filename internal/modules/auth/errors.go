package auth

import "tierraalta/internal/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.Unauthorized("email or password is incorrect")
	ErrEmailAlreadyExists = apperror.Conflict("this email is already registered")
	ErrAccountLocked      = apperror.Forbidden("too many failed attempts, try again later")
	ErrUserNotFound       = apperror.NotFound("user not found")
)
