package hotelservice

import (
	"context"
	"fmt"
	"math"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/events"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/dateutil"
	"tierraalta/internal/repository"

	"gorm.io/gorm"
)

// Book attaches a service session to one of the guest's stays. The
// reservation row is locked for the whole transaction so a concurrent
// cancellation of the stay cannot miss the new booking, and slot capacity is
// taken with a single conditional increment.
func (s *Service) Book(ctx context.Context, actor domain.Principal, in BookInput) (*BookingResult, error) {
	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, lookupError(err, ErrServiceNotFound, "service")
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	if in.Participants < svc.MinCapacity || in.Participants > svc.MaxCapacity {
		return nil, apperror.Validation("participants must be between %d and %d", svc.MinCapacity, svc.MaxCapacity)
	}

	var result BookingResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		res, err := r.reservations.GetForUpdate(ctx, in.ReservationID)
		if err != nil {
			return lookupError(err, ErrReservationNotFound, "reservation")
		}
		if !actor.CanAccess(res.UserID) {
			return ErrReservationNotFound
		}
		if !res.Status.Active() {
			return apperror.Conflict("reservation is %s, services can only be added to an active stay", res.Status)
		}
		if !dateutil.Contains(res.CheckIn, res.CheckOut, in.Date) {
			return apperror.Validation("booking_date must fall within your stay from %s to %s",
				dateutil.Format(res.CheckIn), dateutil.Format(res.CheckOut))
		}

		slot, err := s.findOrCreateSlot(ctx, r, svc, in.Date, in.Time)
		if err != nil {
			return err
		}
		if !slot.IsAvailable {
			return ErrSlotUnavailable
		}
		if err := capacityError(slot, in.Participants); err != nil {
			return err
		}

		ok, err := r.slots.IncrementBooked(ctx, slot.ID, in.Participants)
		if err != nil {
			return apperror.Internal(err, "reserve slot capacity")
		}
		if !ok {
			// Lost the race for the last places; report what is left now.
			fresh, err := r.slots.GetByID(ctx, slot.ID)
			if err != nil {
				return apperror.Internal(err, "reload slot")
			}
			if !fresh.IsAvailable {
				return ErrSlotUnavailable
			}
			if err := capacityError(fresh, in.Participants); err != nil {
				return err
			}
			return ErrSlotFull
		}

		total := math.Round(svc.PriceFor(in.Participants)*100) / 100
		booking := &domain.ServiceBooking{
			UserID:          res.UserID,
			ServiceID:       svc.ID,
			TimeSlotID:      slot.ID,
			ReservationID:   res.ID,
			BookingDate:     in.Date,
			BookingTime:     slot.StartTime,
			Participants:    in.Participants,
			TotalPrice:      total,
			Status:          domain.ServiceBookingPending,
			SpecialRequests: in.SpecialRequests,
		}
		if err := r.bookings.Create(ctx, booking); err != nil {
			return apperror.Internal(err, "create service booking")
		}

		payment := &domain.ServicePayment{
			ServiceBookingID: booking.ID,
			Amount:           total,
			Status:           domain.PaymentPending,
			Provider:         s.provider,
		}
		if err := r.payments.CreateService(ctx, payment); err != nil {
			return apperror.Internal(err, "create service payment")
		}

		booking.Service = svc
		result.Booking = booking
		result.Payment = payment
		return nil
	})
	if err != nil {
		s.logRejected(err, "book service", in.ServiceID)
		return nil, err
	}

	b := result.Booking
	s.log.Info().
		Int64("booking_id", b.ID).
		Int64("service_id", b.ServiceID).
		Int64("slot_id", b.TimeSlotID).
		Int64("reservation_id", b.ReservationID).
		Int("participants", b.Participants).
		Float64("total", b.TotalPrice).
		Msg("service booked")
	s.publish(events.EventServiceBookingCreated, bookingPayload(b))
	return &result, nil
}

// findOrCreateSlot returns the stored slot for the key, creating it from the
// weekly schedule when it was never generated.
func (s *Service) findOrCreateSlot(ctx context.Context, r txRepos, svc *domain.HotelService, day time.Time, clock string) (*domain.ServiceTimeSlot, error) {
	slot, err := r.slots.FindByKey(ctx, svc.ID, day, clock)
	if err == nil {
		return slot, nil
	}
	if !repository.IsNotFound(err) {
		return nil, apperror.Internal(err, "load slot")
	}

	candidate, err := slotAt(svc, day, clock)
	if err != nil {
		return nil, apperror.Internal(err, "build slot")
	}
	if candidate == nil {
		return nil, apperror.Validation("%s is not offered on %s at %s", svc.Name, dateutil.Format(day), clock)
	}
	if _, err := r.slots.InsertMissing(ctx, []domain.ServiceTimeSlot{*candidate}); err != nil {
		return nil, apperror.Internal(err, "create slot")
	}
	slot, err = r.slots.FindByKey(ctx, svc.ID, day, clock)
	if err != nil {
		return nil, apperror.Internal(err, "reload slot")
	}
	return slot, nil
}

func capacityError(slot *domain.ServiceTimeSlot, participants int) error {
	remaining := slot.Remaining()
	if remaining <= 0 {
		return ErrSlotFull
	}
	if participants > remaining {
		if remaining == 1 {
			return apperror.Conflict("only 1 spot left in this time slot")
		}
		return apperror.Conflict("only %d spots left in this time slot", remaining)
	}
	return nil
}

// CancelBooking cancels a pending or confirmed booking and gives its places
// back to the slot.
func (s *Service) CancelBooking(ctx context.Context, actor domain.Principal, id int64) (*domain.ServiceBooking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrBookingNotFound, "service booking")
	}
	if !actor.CanAccess(current.UserID) {
		return nil, ErrForbidden
	}

	var booking *domain.ServiceBooking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		b, err := r.bookings.GetForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, ErrBookingNotFound, "service booking")
		}
		if !b.Status.Cancellable() {
			return apperror.Conflict("booking is %s and cannot be cancelled", b.Status)
		}

		payment, err := r.payments.GetServiceByBookingID(ctx, b.ID)
		switch {
		case err == nil:
			if payment.Status == domain.PaymentApproved {
				return ErrPaymentApproved
			}
		case !repository.IsNotFound(err):
			return apperror.Internal(err, "load service payment")
		}

		if err := s.cancelLocked(ctx, r, b); err != nil {
			return err
		}
		b.Service = current.Service
		b.Payment = payment
		booking = b
		return nil
	})
	if err != nil {
		s.logRejected(err, "cancel service booking", id)
		return nil, err
	}

	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("slot_id", booking.TimeSlotID).
		Int("released", booking.Participants).
		Int64("actor_id", actor.ID).
		Msg("service booking cancelled")
	s.publish(events.EventServiceBookingCancelled, bookingPayload(booking))
	return booking, nil
}

// cancelLocked marks b cancelled and releases its places. b must be locked by
// the caller's transaction.
func (s *Service) cancelLocked(ctx context.Context, r txRepos, b *domain.ServiceBooking) error {
	ok, err := r.slots.DecrementBooked(ctx, b.TimeSlotID, b.Participants)
	if err != nil {
		return apperror.Internal(err, "release slot capacity")
	}
	if !ok {
		return apperror.Internal(fmt.Errorf("slot %d holds fewer than %d booked places", b.TimeSlotID, b.Participants), "release slot capacity")
	}

	now := s.now()
	if err := r.bookings.UpdateStatus(ctx, b.ID, domain.ServiceBookingCancelled, &now); err != nil {
		return apperror.Internal(err, "cancel service booking")
	}
	b.Status = domain.ServiceBookingCancelled
	b.CancelledAt = &now
	return nil
}

// SyncPaymentStatus applies a gateway outcome to a service payment. Approval
// confirms a pending booking, rejection cancels it and a refund only touches
// the payment. Replaying the current status is a no-op.
func (s *Service) SyncPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*BookingResult, error) {
	if status != domain.PaymentApproved && status != domain.PaymentRejected && status != domain.PaymentRefunded {
		return nil, apperror.Validation("unsupported payment status %q", status)
	}

	current, err := s.payments.GetServiceByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, ErrPaymentNotFound, "service payment")
	}

	var (
		result    BookingResult
		cancelled bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		b, err := r.bookings.GetForUpdate(ctx, current.ServiceBookingID)
		if err != nil {
			return lookupError(err, ErrBookingNotFound, "service booking")
		}
		payment, err := r.payments.GetServiceForUpdate(ctx, paymentID)
		if err != nil {
			return lookupError(err, ErrPaymentNotFound, "service payment")
		}
		result.Booking = b
		result.Payment = payment

		if payment.Status == status {
			return nil
		}
		if !paymentTransitionAllowed(payment.Status, status) {
			return apperror.Conflict("payment is %s and cannot become %s", payment.Status, status)
		}

		var paidAt *time.Time
		if status == domain.PaymentApproved {
			now := s.now()
			paidAt = &now
		}
		if err := r.payments.UpdateServiceStatus(ctx, payment.ID, status, paidAt); err != nil {
			return apperror.Internal(err, "update service payment status")
		}
		payment.Status = status
		payment.PaidAt = paidAt

		switch status {
		case domain.PaymentApproved:
			if b.Status == domain.ServiceBookingPending {
				if err := r.bookings.UpdateStatus(ctx, b.ID, domain.ServiceBookingConfirmed, nil); err != nil {
					return apperror.Internal(err, "confirm service booking")
				}
				b.Status = domain.ServiceBookingConfirmed
			}
		case domain.PaymentRejected:
			if b.Status.Cancellable() {
				if err := s.cancelLocked(ctx, r, b); err != nil {
					return err
				}
				cancelled = true
			}
		}
		return nil
	})
	if err != nil {
		s.logRejected(err, "sync service payment status", paymentID)
		return nil, err
	}

	s.log.Info().
		Int64("payment_id", paymentID).
		Int64("booking_id", result.Booking.ID).
		Str("payment_status", string(status)).
		Str("booking_status", string(result.Booking.Status)).
		Msg("service payment synced")
	if cancelled {
		s.publish(events.EventServiceBookingCancelled, bookingPayload(result.Booking))
	}
	return &result, nil
}

func paymentTransitionAllowed(from, to domain.PaymentStatus) bool {
	switch from {
	case domain.PaymentPending:
		return to == domain.PaymentApproved || to == domain.PaymentRejected
	case domain.PaymentApproved:
		return to == domain.PaymentRefunded
	}
	return false
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.ServiceBooking, error) {
	list, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "list service bookings")
	}
	return list, nil
}

func bookingPayload(b *domain.ServiceBooking) events.ServiceBookingPayload {
	return events.ServiceBookingPayload{
		BookingID:     b.ID,
		UserID:        b.UserID,
		ServiceID:     b.ServiceID,
		SlotID:        b.TimeSlotID,
		ReservationID: b.ReservationID,
		Participants:  b.Participants,
		Status:        string(b.Status),
	}
}
