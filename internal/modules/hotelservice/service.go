package hotelservice

import (
	"context"
	"strings"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/domain"
	"tierraalta/internal/events"
	"tierraalta/internal/logging"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/dateutil"
	"tierraalta/internal/pkg/validator"
	"tierraalta/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Service struct {
	db           *gorm.DB
	services     *repository.HotelServiceRepository
	slots        *repository.SlotRepository
	bookings     *repository.ServiceBookingRepository
	reservations *repository.ReservationRepository
	payments     *repository.PaymentRepository

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
		services:     repository.NewHotelServiceRepository(db),
		slots:        repository.NewSlotRepository(db),
		bookings:     repository.NewServiceBookingRepository(db),
		reservations: repository.NewReservationRepository(db),
		payments:     repository.NewPaymentRepository(db),
		limits:       limits,
		provider:     provider,
		events:       publisher,
		log:          logging.OrNop(log),
		now:          time.Now,
	}
}

// SetClock replaces the time source used for payment and cancellation stamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

type txRepos struct {
	services     *repository.HotelServiceRepository
	slots        *repository.SlotRepository
	bookings     *repository.ServiceBookingRepository
	reservations *repository.ReservationRepository
	payments     *repository.PaymentRepository
}

func (s *Service) bind(tx *gorm.DB) txRepos {
	return txRepos{
		services:     s.services.WithTx(tx),
		slots:        s.slots.WithTx(tx),
		bookings:     s.bookings.WithTx(tx),
		reservations: s.reservations.WithTx(tx),
		payments:     s.payments.WithTx(tx),
	}
}

func (s *Service) CreateService(ctx context.Context, actor domain.Principal, req CreateServiceRequest) (*domain.HotelService, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.ToUpper(strings.TrimSpace(req.Category))
	for i, d := range req.AvailableDays {
		req.AvailableDays[i] = strings.ToLower(strings.TrimSpace(d))
	}
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation("%s", validator.Describe(errs))
	}

	serviceType := domain.ServiceType(req.Type)
	if !serviceType.AllowsCategory(req.Category) {
		return nil, apperror.Validation("category %s is not allowed for %s services", req.Category, req.Type)
	}
	if req.MinCapacity > req.MaxCapacity {
		return nil, apperror.Validation("min_capacity cannot exceed max_capacity")
	}
	if err := checkSchedule(req.StartTime, req.EndTime, req.Duration); err != nil {
		return nil, apperror.Validation("%v", err)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	svc := &domain.HotelService{
		Name:           req.Name,
		Description:    req.Description,
		Type:           serviceType,
		Category:       req.Category,
		Price:          req.Price,
		PricePerPerson: req.PricePerPerson,
		Duration:       req.Duration,
		MinCapacity:    req.MinCapacity,
		MaxCapacity:    req.MaxCapacity,
		AvailableDays:  dedupe(req.AvailableDays),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		SlotInterval:   req.SlotInterval,
		IsActive:       active,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperror.Internal(err, "create service")
	}

	s.log.Info().Int64("service_id", svc.ID).Str("name", svc.Name).Int64("actor_id", actor.ID).Msg("service created")
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, actor domain.Principal, id int64, req UpdateServiceRequest) (*domain.HotelService, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation("%s", validator.Describe(errs))
	}
	updates := req.updates()
	if len(updates) == 0 {
		return nil, apperror.Validation("nothing to update")
	}

	svc, err := s.services.Update(ctx, id, updates)
	if err != nil {
		return nil, lookupError(err, ErrServiceNotFound, "service")
	}
	s.log.Info().Int64("service_id", id).Int64("actor_id", actor.ID).Interface("fields", updates).Msg("service updated")
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id int64) (*domain.HotelService, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrServiceNotFound, "service")
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context, serviceType string, activeOnly bool) ([]domain.HotelService, error) {
	t := domain.ServiceType(strings.ToUpper(serviceType))
	if t != "" && !t.Valid() {
		return nil, apperror.Validation("unknown service type %q", serviceType)
	}
	list, err := s.services.List(ctx, t, activeOnly)
	if err != nil {
		return nil, apperror.Internal(err, "list services")
	}
	return list, nil
}

// DeleteService removes a service that was never booked together with its
// empty slots. Services with booking history can only be deactivated.
func (s *Service) DeleteService(ctx context.Context, actor domain.Principal, id int64) error {
	if !actor.IsStaff() {
		return ErrStaffOnly
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		if _, err := r.services.GetByID(ctx, id); err != nil {
			return lookupError(err, ErrServiceNotFound, "service")
		}
		n, err := r.bookings.CountByService(ctx, id)
		if err != nil {
			return apperror.Internal(err, "count service bookings")
		}
		if n > 0 {
			return apperror.Conflict("service has %d booking(s) and cannot be deleted, deactivate it instead", n)
		}
		if err := r.slots.DeleteEmptyByService(ctx, id); err != nil {
			return apperror.Internal(err, "delete service slots")
		}
		if err := r.services.Delete(ctx, id); err != nil {
			return lookupError(err, ErrServiceNotFound, "service")
		}
		return nil
	})
	if err != nil {
		s.logRejected(err, "delete service", id)
		return err
	}
	s.log.Info().Int64("service_id", id).Int64("actor_id", actor.ID).Msg("service deleted")
	return nil
}

// GenerateSlots materialises the weekly schedule between start and end
// inclusive. Slots that already exist are kept as they are, so repeated
// calls only fill gaps. It returns the number of slots created.
func (s *Service) GenerateSlots(ctx context.Context, actor domain.Principal, serviceID int64, start, end time.Time) (int64, error) {
	if !actor.IsStaff() {
		return 0, ErrStaffOnly
	}
	if end.Before(start) {
		return 0, apperror.Validation("end_date must not be before start_date")
	}
	if dateutil.NightsBetween(start, end)+1 > s.limits.MaxSlotGenerationDays {
		return 0, apperror.Validation("slots can be generated for at most %d days at a time", s.limits.MaxSlotGenerationDays)
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return 0, lookupError(err, ErrServiceNotFound, "service")
	}
	if !svc.IsActive {
		return 0, ErrServiceInactive
	}

	var slots []domain.ServiceTimeSlot
	for _, day := range dateutil.DaysInRange(start, end) {
		daySlots, err := slotsFor(svc, day)
		if err != nil {
			return 0, apperror.Internal(err, "build slots")
		}
		slots = append(slots, daySlots...)
	}

	created, err := s.slots.InsertMissing(ctx, slots)
	if err != nil {
		return 0, apperror.Internal(err, "insert slots")
	}

	s.log.Info().
		Int64("service_id", serviceID).
		Str("from", dateutil.Format(start)).
		Str("to", dateutil.Format(end)).
		Int("scheduled", len(slots)).
		Int64("created", created).
		Msg("service slots generated")
	return created, nil
}

func (s *Service) ListSlots(ctx context.Context, serviceID int64, day time.Time) ([]SlotView, error) {
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return nil, lookupError(err, ErrServiceNotFound, "service")
	}
	slots, err := s.slots.ListByServiceAndDate(ctx, serviceID, day)
	if err != nil {
		return nil, apperror.Internal(err, "list slots")
	}
	out := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotView{ServiceTimeSlot: slot, Remaining: slot.Remaining()})
	}
	return out, nil
}

// UpdateSlot changes a slot's capacity and/or availability. Capacity can
// never drop below the places already booked.
func (s *Service) UpdateSlot(ctx context.Context, actor domain.Principal, id int64, req UpdateSlotRequest) (*SlotView, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}
	if req.Capacity == nil && req.IsAvailable == nil {
		return nil, apperror.Validation("capacity or is_available is required")
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		return nil, apperror.Validation("capacity cannot be negative")
	}

	var view SlotView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		slot, err := r.slots.GetByID(ctx, id)
		if err != nil {
			return lookupError(err, ErrSlotNotFound, "slot")
		}
		if req.Capacity != nil {
			ok, err := r.slots.UpdateCapacity(ctx, id, *req.Capacity)
			if err != nil {
				return apperror.Internal(err, "update slot capacity")
			}
			if !ok {
				return apperror.Conflict("capacity cannot be lower than the %d place(s) already booked", slot.Booked)
			}
		}
		if req.IsAvailable != nil {
			if err := r.slots.SetAvailable(ctx, id, *req.IsAvailable); err != nil {
				return lookupError(err, ErrSlotNotFound, "slot")
			}
		}
		slot, err = r.slots.GetByID(ctx, id)
		if err != nil {
			return lookupError(err, ErrSlotNotFound, "slot")
		}
		view = SlotView{ServiceTimeSlot: *slot, Remaining: slot.Remaining()}
		return nil
	})
	if err != nil {
		s.logRejected(err, "update slot", id)
		return nil, err
	}
	s.log.Info().Int64("slot_id", id).Int("capacity", view.Capacity).Bool("available", view.IsAvailable).Msg("slot updated")
	return &view, nil
}

func (s *Service) DeleteSlot(ctx context.Context, actor domain.Principal, id int64) error {
	if !actor.IsStaff() {
		return ErrStaffOnly
	}
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, ErrSlotNotFound, "slot")
	}
	ok, err := s.slots.DeleteIfEmpty(ctx, id)
	if err != nil {
		return apperror.Internal(err, "delete slot")
	}
	if !ok {
		return apperror.Conflict("slot %s %s has %d booked place(s) and cannot be deleted",
			dateutil.Format(slot.Date), slot.StartTime, slot.Booked)
	}
	s.log.Info().Int64("slot_id", id).Int64("actor_id", actor.ID).Msg("slot deleted")
	return nil
}

func (s *Service) publish(eventType string, payload any) {
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}

func (s *Service) logRejected(err error, op string, id int64) {
	if apperror.KindOf(err) == apperror.KindInternal {
		s.log.Error().Err(err).Str("op", op).Int64("id", id).Msg("service operation failed")
		return
	}
	s.log.Debug().Err(err).Str("op", op).Int64("id", id).Msg("service operation rejected")
}

func lookupError(err error, notFound error, what string) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return apperror.Internal(err, "load %s", what)
}

func dedupe(days []string) []string {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
