package reservation

import "tierraalta/internal/pkg/apperror"

var (
	ErrRoomNotFound        = apperror.NotFound("room not found")
	ErrReservationNotFound = apperror.NotFound("reservation not found")
	ErrPaymentNotFound     = apperror.NotFound("payment not found")
	ErrForbidden           = apperror.Forbidden("you cannot access this reservation")
	ErrStaffOnly           = apperror.Forbidden("only staff can change a reservation to this status")
	ErrPaymentApproved     = apperror.Conflict("the payment for this reservation is already approved, contact the hotel to cancel")
)
