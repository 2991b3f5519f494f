package reservation

import (
	"context"
	"fmt"
	"math"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/domain"
	"tierraalta/internal/events"
	"tierraalta/internal/logging"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/dateutil"
	"tierraalta/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service runs the reservation lifecycle. Every read-check-write sequence is
// one transaction that starts by locking the room row, so two writers for the
// same room are serialized before either checks for overlaps.
type Service struct {
	db           *gorm.DB
	rooms        *repository.RoomRepository
	reservations *repository.ReservationRepository
	payments     *repository.PaymentRepository
	bookings     *repository.ServiceBookingRepository
	slots        *repository.SlotRepository

	limits   config.BookingConfig
	provider string
	events   events.Publisher
	log      *zerolog.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, limits config.BookingConfig, provider string, publisher events.Publisher, log *zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		db:           db,
		rooms:        repository.NewRoomRepository(db),
		reservations: repository.NewReservationRepository(db),
		payments:     repository.NewPaymentRepository(db),
		bookings:     repository.NewServiceBookingRepository(db),
		slots:        repository.NewSlotRepository(db),
		limits:       limits,
		provider:     provider,
		events:       publisher,
		log:          logging.OrNop(log),
		now:          time.Now,
	}
}

// SetClock replaces the time source used to decide what "today" is.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() time.Time {
	return dateutil.DayOf(s.now())
}

type txRepos struct {
	rooms        *repository.RoomRepository
	reservations *repository.ReservationRepository
	payments     *repository.PaymentRepository
	bookings     *repository.ServiceBookingRepository
	slots        *repository.SlotRepository
}

func (s *Service) bind(tx *gorm.DB) txRepos {
	return txRepos{
		rooms:        s.rooms.WithTx(tx),
		reservations: s.reservations.WithTx(tx),
		payments:     s.payments.WithTx(tx),
		bookings:     s.bookings.WithTx(tx),
		slots:        s.slots.WithTx(tx),
	}
}

// validateStay checks the request shape before storage is touched and
// returns the number of nights.
func (s *Service) validateStay(checkIn, checkOut time.Time, guests int) (int, error) {
	if guests < 1 || guests > s.limits.MaxGuests {
		return 0, apperror.Validation("guests must be between 1 and %d", s.limits.MaxGuests)
	}

	nights := dateutil.NightsBetween(checkIn, checkOut)
	if nights < 1 {
		return 0, apperror.Validation("check_out must be at least one night after check_in")
	}
	if nights > s.limits.MaxNights {
		return 0, apperror.Validation("a stay cannot be longer than %d nights", s.limits.MaxNights)
	}

	today := s.today()
	if checkIn.Before(today) {
		return 0, apperror.Validation("check_in %s is in the past", dateutil.Format(checkIn))
	}
	if checkIn.After(dateutil.AddDays(today, s.limits.MaxAdvanceDays)) {
		return 0, apperror.Validation("check_in cannot be more than %d days ahead", s.limits.MaxAdvanceDays)
	}
	return nights, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*View, error) {
	nights, err := s.validateStay(in.CheckIn, in.CheckOut, in.Guests)
	if err != nil {
		return nil, err
	}

	var created *domain.Reservation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		room, err := r.rooms.GetForUpdate(ctx, in.RoomID)
		if err != nil {
			return lookupError(err, ErrRoomNotFound, "room")
		}
		if !room.Status.Bookable() {
			return apperror.Conflict("room %s is %s and cannot be reserved", room.Number, room.Status)
		}
		if in.Guests > room.Capacity {
			return apperror.Validation("room %s holds at most %d guests", room.Number, room.Capacity)
		}

		overlapping, err := r.reservations.FindOverlapping(ctx, room.ID, in.CheckIn, in.CheckOut, 0)
		if err != nil {
			return apperror.Internal(err, "check overlapping reservations")
		}
		if len(overlapping) > 0 {
			c := overlapping[0]
			return apperror.Conflict("room %s is already reserved from %s to %s",
				room.Number, dateutil.Format(c.CheckIn), dateutil.Format(c.CheckOut))
		}

		total := math.Round(room.Price*float64(nights)*100) / 100
		if total <= 0 {
			return apperror.Internal(fmt.Errorf("room %d priced %.2f for %d nights", room.ID, room.Price, nights), "price reservation")
		}

		res := &domain.Reservation{
			UserID:          in.UserID,
			RoomID:          room.ID,
			CheckIn:         in.CheckIn,
			CheckOut:        in.CheckOut,
			Guests:          in.Guests,
			TotalPrice:      total,
			Status:          domain.ReservationPending,
			SpecialRequests: in.SpecialRequests,
		}
		if err := r.reservations.Create(ctx, res); err != nil {
			return apperror.Internal(err, "create reservation")
		}

		payment := &domain.Payment{
			ReservationID: res.ID,
			Amount:        total,
			Status:        domain.PaymentPending,
			Provider:      s.provider,
		}
		if err := r.payments.Create(ctx, payment); err != nil {
			return apperror.Internal(err, "create payment")
		}

		res.Room = room
		res.Payment = payment
		created = res
		return nil
	})
	if err != nil {
		s.logRejected(err, "create reservation", in.RoomID)
		return nil, err
	}

	s.log.Info().
		Int64("reservation_id", created.ID).
		Int64("room_id", created.RoomID).
		Int64("user_id", created.UserID).
		Str("check_in", dateutil.Format(created.CheckIn)).
		Str("check_out", dateutil.Format(created.CheckOut)).
		Float64("total_price", created.TotalPrice).
		Msg("reservation created")
	s.publish(events.EventReservationCreated, reservationPayload(created, "", created.UserID))

	v := newView(created)
	return &v, nil
}

// UpdateStatus moves a reservation to any status on behalf of staff and
// applies the matching room side effect in the same transaction. Guests may
// only cancel their own reservations through it.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Principal, id int64, target domain.ReservationStatus) (*StatusChange, error) {
	if !target.Valid() {
		return nil, apperror.Validation("unknown reservation status %q", target)
	}

	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrReservationNotFound, "reservation")
	}
	if !actor.IsStaff() {
		if !actor.CanAccess(current.UserID) {
			return nil, ErrForbidden
		}
		if target != domain.ReservationCancelled {
			return nil, ErrStaffOnly
		}
		return s.Cancel(ctx, actor, id)
	}

	today := s.today()
	var (
		change  StatusChange
		prev    domain.ReservationStatus
		outcome cancelOutcome
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		room, err := r.rooms.GetForUpdate(ctx, current.RoomID)
		if err != nil {
			return lookupError(err, ErrRoomNotFound, "room")
		}
		res, err := r.reservations.GetForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, ErrReservationNotFound, "reservation")
		}
		prev = res.Status

		if res.Status.Terminal() {
			return apperror.Conflict("reservation is already %s and cannot change", res.Status)
		}
		if res.Status == target {
			return apperror.Conflict("reservation is already %s", target)
		}
		switch target {
		case domain.ReservationConfirmed:
			if res.CheckIn.Before(today) {
				return apperror.Conflict("cannot confirm a reservation whose check-in date %s has passed", dateutil.Format(res.CheckIn))
			}
		case domain.ReservationCheckedIn:
			if res.CheckIn.After(today) {
				return apperror.Conflict("cannot check in before the check-in date %s", dateutil.Format(res.CheckIn))
			}
		}

		if target == domain.ReservationCancelled {
			outcome, err = s.cancelLocked(ctx, r, room, res)
			if err != nil {
				return err
			}
		} else {
			if err := r.reservations.UpdateStatus(ctx, res.ID, target, nil); err != nil {
				return apperror.Internal(err, "update reservation status")
			}
			res.Status = target

			next := room.Status
			switch target {
			case domain.ReservationCheckedIn:
				next = domain.RoomOccupied
			case domain.ReservationCheckedOut:
				next = domain.RoomCleaning
			}
			if next != room.Status {
				if err := r.rooms.UpdateStatus(ctx, room.ID, next); err != nil {
					return apperror.Internal(err, "update room status")
				}
				outcome.room = &events.RoomStatusPayload{
					RoomID:     room.ID,
					Number:     room.Number,
					Status:     string(next),
					PrevStatus: string(room.Status),
					Cause:      "reservation_" + string(target),
				}
				room.Status = next
			}
		}

		res.Room = room
		change.Reservation = res
		change.RoomStatus = room.Status
		return nil
	})
	if err != nil {
		s.logRejected(err, "update reservation status", id)
		return nil, err
	}

	change.RoomStatusUpdated = outcome.room != nil
	change.CancelledServices = len(outcome.bookings)

	s.log.Info().
		Int64("reservation_id", id).
		Str("from", string(prev)).
		Str("to", string(target)).
		Int64("actor_id", actor.ID).
		Bool("room_status_updated", change.RoomStatusUpdated).
		Msg("reservation status changed")
	s.publishTransition(change.Reservation, prev, actor.ID, outcome)
	return &change, nil
}

// Cancel cancels a pending or confirmed reservation for its owner or staff.
// A reservation with an approved payment must be cancelled by the hotel.
func (s *Service) Cancel(ctx context.Context, actor domain.Principal, id int64) (*StatusChange, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrReservationNotFound, "reservation")
	}
	if !actor.CanAccess(current.UserID) {
		return nil, ErrForbidden
	}

	var (
		change  StatusChange
		prev    domain.ReservationStatus
		outcome cancelOutcome
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		room, err := r.rooms.GetForUpdate(ctx, current.RoomID)
		if err != nil {
			return lookupError(err, ErrRoomNotFound, "room")
		}
		res, err := r.reservations.GetForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, ErrReservationNotFound, "reservation")
		}
		prev = res.Status

		if res.Status != domain.ReservationPending && res.Status != domain.ReservationConfirmed {
			return apperror.Conflict("only pending or confirmed reservations can be cancelled, this one is %s", res.Status)
		}

		payment, err := r.payments.GetByReservationID(ctx, res.ID)
		switch {
		case repository.IsNotFound(err):
		case err != nil:
			return apperror.Internal(err, "load payment")
		case payment.Status == domain.PaymentApproved:
			return ErrPaymentApproved
		}

		outcome, err = s.cancelLocked(ctx, r, room, res)
		if err != nil {
			return err
		}
		res.Room = room
		res.Payment = payment
		change.Reservation = res
		change.RoomStatus = room.Status
		return nil
	})
	if err != nil {
		s.logRejected(err, "cancel reservation", id)
		return nil, err
	}

	change.RoomStatusUpdated = outcome.room != nil
	change.CancelledServices = len(outcome.bookings)

	s.log.Info().
		Int64("reservation_id", id).
		Str("from", string(prev)).
		Int64("actor_id", actor.ID).
		Int("cancelled_services", change.CancelledServices).
		Msg("reservation cancelled")
	s.publishTransition(change.Reservation, prev, actor.ID, outcome)
	return &change, nil
}

type cancelOutcome struct {
	room     *events.RoomStatusPayload
	bookings []domain.ServiceBooking
}

// cancelLocked cancels res, releases the service capacity attached to it and
// frees the room when nothing else keeps it occupied. The room and the
// reservation must already be locked by the caller's transaction.
func (s *Service) cancelLocked(ctx context.Context, r txRepos, room *domain.Room, res *domain.Reservation) (cancelOutcome, error) {
	var out cancelOutcome
	now := s.now()

	if err := r.reservations.UpdateStatus(ctx, res.ID, domain.ReservationCancelled, &now); err != nil {
		return out, apperror.Internal(err, "cancel reservation")
	}
	res.Status = domain.ReservationCancelled
	res.CancelledAt = &now

	bookings, err := r.bookings.ListCancellableByReservation(ctx, res.ID)
	if err != nil {
		return out, apperror.Internal(err, "list service bookings")
	}
	for i := range bookings {
		b := &bookings[i]
		ok, err := r.slots.DecrementBooked(ctx, b.TimeSlotID, b.Participants)
		if err != nil {
			return out, apperror.Internal(err, "release slot capacity")
		}
		if !ok {
			return out, apperror.Internal(fmt.Errorf("slot %d holds fewer than %d booked places", b.TimeSlotID, b.Participants), "release slot capacity")
		}
		if err := r.bookings.UpdateStatus(ctx, b.ID, domain.ServiceBookingCancelled, &now); err != nil {
			return out, apperror.Internal(err, "cancel service booking")
		}
		b.Status = domain.ServiceBookingCancelled
		b.CancelledAt = &now
	}
	out.bookings = bookings

	if room.Status != domain.RoomOccupied {
		return out, nil
	}
	staying, err := r.reservations.CountByRoom(ctx, room.ID, domain.StayReservationStatuses, res.ID)
	if err != nil {
		return out, apperror.Internal(err, "count room stays")
	}
	if staying > 0 {
		return out, nil
	}
	if err := r.rooms.UpdateStatus(ctx, room.ID, domain.RoomAvailable); err != nil {
		return out, apperror.Internal(err, "release room")
	}
	out.room = &events.RoomStatusPayload{
		RoomID:     room.ID,
		Number:     room.Number,
		Status:     string(domain.RoomAvailable),
		PrevStatus: string(room.Status),
		Cause:      "reservation_CANCELLED",
	}
	room.Status = domain.RoomAvailable
	return out, nil
}

// SyncPaymentStatus applies a gateway outcome to a reservation payment. An
// approval confirms a pending reservation, a rejection cancels it with the
// usual side effects and a refund only touches the payment. Replaying the
// current status is a no-op.
func (s *Service) SyncPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*StatusChange, error) {
	if status != domain.PaymentApproved && status != domain.PaymentRejected && status != domain.PaymentRefunded {
		return nil, apperror.Validation("unsupported payment status %q", status)
	}

	current, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, ErrPaymentNotFound, "payment")
	}
	owner, err := s.reservations.GetByID(ctx, current.ReservationID)
	if err != nil {
		return nil, lookupError(err, ErrReservationNotFound, "reservation")
	}

	var (
		change  StatusChange
		prev    domain.ReservationStatus
		outcome cancelOutcome
		changed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		room, err := r.rooms.GetForUpdate(ctx, owner.RoomID)
		if err != nil {
			return lookupError(err, ErrRoomNotFound, "room")
		}
		res, err := r.reservations.GetForUpdate(ctx, owner.ID)
		if err != nil {
			return lookupError(err, ErrReservationNotFound, "reservation")
		}
		payment, err := r.payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return lookupError(err, ErrPaymentNotFound, "payment")
		}
		prev = res.Status
		res.Room = room
		res.Payment = payment
		change.Reservation = res
		change.RoomStatus = room.Status

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
		if err := r.payments.UpdateStatus(ctx, payment.ID, status, paidAt); err != nil {
			return apperror.Internal(err, "update payment status")
		}
		payment.Status = status
		payment.PaidAt = paidAt

		switch status {
		case domain.PaymentApproved:
			if res.Status == domain.ReservationPending {
				if err := r.reservations.UpdateStatus(ctx, res.ID, domain.ReservationConfirmed, nil); err != nil {
					return apperror.Internal(err, "confirm reservation")
				}
				res.Status = domain.ReservationConfirmed
				changed = true
			}
		case domain.PaymentRejected:
			if res.Status == domain.ReservationPending || res.Status == domain.ReservationConfirmed {
				outcome, err = s.cancelLocked(ctx, r, room, res)
				if err != nil {
					return err
				}
				change.RoomStatus = room.Status
				changed = true
			}
		}
		return nil
	})
	if err != nil {
		s.logRejected(err, "sync payment status", paymentID)
		return nil, err
	}

	change.RoomStatusUpdated = outcome.room != nil
	change.CancelledServices = len(outcome.bookings)

	s.log.Info().
		Int64("payment_id", paymentID).
		Int64("reservation_id", owner.ID).
		Str("payment_status", string(status)).
		Str("reservation_status", string(change.Reservation.Status)).
		Msg("reservation payment synced")
	if changed {
		s.publishTransition(change.Reservation, prev, 0, outcome)
	}
	return &change, nil
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

// Get returns a reservation to its owner or to staff.
func (s *Service) Get(ctx context.Context, actor domain.Principal, id int64) (*View, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrReservationNotFound, "reservation")
	}
	if !actor.CanAccess(res.UserID) {
		return nil, ErrForbidden
	}
	v := newView(res)
	return &v, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]View, error) {
	list, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "list reservations")
	}
	out := make([]View, 0, len(list))
	for i := range list {
		out = append(out, newView(&list[i]))
	}
	return out, nil
}

// SearchAvailability lists rooms free for the whole stay with the price the
// stay would cost in each.
func (s *Service) SearchAvailability(ctx context.Context, in SearchInput) ([]AvailableRoom, error) {
	nights, err := s.validateStay(in.CheckIn, in.CheckOut, in.Guests)
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListAvailable(ctx, repository.AvailabilityFilter{
		CheckIn:  in.CheckIn,
		CheckOut: in.CheckOut,
		Guests:   in.Guests,
		Type:     in.Type,
	})
	if err != nil {
		return nil, apperror.Internal(err, "search available rooms")
	}

	out := make([]AvailableRoom, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, AvailableRoom{
			Room:       room,
			Nights:     nights,
			TotalPrice: math.Round(room.Price*float64(nights)*100) / 100,
		})
	}
	return out, nil
}

func (s *Service) publish(eventType string, payload any) {
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}

func (s *Service) publishTransition(res *domain.Reservation, prev domain.ReservationStatus, actorID int64, outcome cancelOutcome) {
	s.publish(events.EventReservationStatusChanged, reservationPayload(res, prev, actorID))
	if outcome.room != nil {
		s.publish(events.EventRoomStatusChanged, outcome.room)
	}
	for _, b := range outcome.bookings {
		s.publish(events.EventServiceBookingCancelled, events.ServiceBookingPayload{
			BookingID:     b.ID,
			UserID:        b.UserID,
			ServiceID:     b.ServiceID,
			SlotID:        b.TimeSlotID,
			ReservationID: b.ReservationID,
			Participants:  b.Participants,
			Status:        string(b.Status),
		})
	}
}

func (s *Service) logRejected(err error, op string, id int64) {
	if apperror.KindOf(err) == apperror.KindInternal {
		s.log.Error().Err(err).Str("op", op).Int64("id", id).Msg("reservation operation failed")
		return
	}
	s.log.Debug().Err(err).Str("op", op).Int64("id", id).Msg("reservation operation rejected")
}

func reservationPayload(res *domain.Reservation, prev domain.ReservationStatus, actorID int64) events.ReservationEventPayload {
	return events.ReservationEventPayload{
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		Status:        string(res.Status),
		PrevStatus:    string(prev),
		CheckIn:       dateutil.Format(res.CheckIn),
		CheckOut:      dateutil.Format(res.CheckOut),
		ChangedByID:   actorID,
	}
}

func lookupError(err error, notFound error, what string) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return apperror.Internal(err, "load %s", what)
}

// ListForExport returns every reservation whose stay overlaps [from, to].
func (s *Service) ListForExport(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	if to.Before(from) {
		return nil, apperror.Validation("to must not be before from")
	}
	if dateutil.NightsBetween(from, to) > s.limits.MaxNights {
		return nil, apperror.Validation("an export cannot span more than %d days", s.limits.MaxNights)
	}
	list, err := s.reservations.ListInRange(ctx, from, dateutil.AddDays(to, 1))
	if err != nil {
		return nil, apperror.Internal(err, "list reservations for export")
	}
	return list, nil
}
