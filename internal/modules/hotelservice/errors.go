package hotelservice

import "tierraalta/internal/pkg/apperror"

var (
	ErrServiceNotFound     = apperror.NotFound("service not found")
	ErrSlotNotFound        = apperror.NotFound("time slot not found")
	ErrBookingNotFound     = apperror.NotFound("service booking not found")
	ErrReservationNotFound = apperror.NotFound("reservation not found")
	ErrPaymentNotFound     = apperror.NotFound("payment not found")
	ErrForbidden           = apperror.Forbidden("you cannot access this service booking")
	ErrStaffOnly           = apperror.Forbidden("only staff can manage services")
	ErrServiceInactive     = apperror.Conflict("this service is not currently offered")
	ErrSlotUnavailable     = apperror.Conflict("this time slot is not available")
	ErrSlotFull            = apperror.Conflict("this time slot is fully booked")
	ErrPaymentApproved     = apperror.Conflict("the payment for this booking is already approved, contact the hotel to cancel")
)
