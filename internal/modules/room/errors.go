package room

import "tierraalta/internal/pkg/apperror"

var (
	ErrRoomNotFound = apperror.NotFound("room not found")
	ErrNumberTaken  = apperror.Conflict("a room with this number already exists")
	ErrStaffOnly    = apperror.Forbidden("only staff can manage rooms")
)
