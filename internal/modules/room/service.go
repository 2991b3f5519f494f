package room

import (
	"context"
	"fmt"
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
	rooms        *repository.RoomRepository
	reservations *repository.ReservationRepository

	limits config.BookingConfig
	events events.Publisher
	log    *zerolog.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, limits config.BookingConfig, publisher events.Publisher, log *zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		db:           db,
		rooms:        repository.NewRoomRepository(db),
		reservations: repository.NewReservationRepository(db),
		limits:       limits,
		events:       publisher,
		log:          logging.OrNop(log),
		now:          time.Now,
	}
}

// SetClock replaces the time source used to decide what "today" is.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ApplyAction runs a staff action against the room. The room row stays
// locked from the moment its bookings are read until the new status is
// written, so reservation writers for the same room wait for it.
func (s *Service) ApplyAction(ctx context.Context, actor domain.Principal, roomID int64, action Action) (*ActionResult, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	today := dateutil.DayOf(s.now())
	var result ActionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := s.rooms.WithTx(tx)
		reservations := s.reservations.WithTx(tx)

		room, err := rooms.GetForUpdate(ctx, roomID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRoomNotFound
			}
			return apperror.Internal(err, "load room")
		}

		info, facts, err := s.collectFacts(ctx, reservations, room, today)
		if err != nil {
			return err
		}

		next, err := Next(action, facts)
		if err != nil {
			return err
		}

		if action == ActionMaintenance {
			upcoming, err := reservations.FindCheckInsBetween(ctx, room.ID, today, dateutil.AddDays(today, s.limits.MaintenanceWarningDays))
			if err != nil {
				return apperror.Internal(err, "list upcoming check-ins")
			}
			for i := range upcoming {
				info.UpcomingCheckIns = append(info.UpcomingCheckIns, stayInfo(&upcoming[i]))
			}
			if len(upcoming) > 0 {
				info.Warning = fmt.Sprintf("%d reservation(s) check in within %d days, starting %s",
					len(upcoming), s.limits.MaintenanceWarningDays, dateutil.Format(upcoming[0].CheckIn))
			}
		}

		result.PreviousStatus = room.Status
		if next != room.Status {
			if err := rooms.UpdateStatus(ctx, room.ID, next); err != nil {
				return apperror.Internal(err, "update room status")
			}
			room.Status = next
		}
		result.Room = room
		result.ReservationInfo = info
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Error().Err(err).Int64("room_id", roomID).Str("action", string(action)).Msg("room action failed")
		} else {
			s.log.Debug().Err(err).Int64("room_id", roomID).Str("action", string(action)).Msg("room action rejected")
		}
		return nil, err
	}

	s.log.Info().
		Int64("room_id", result.Room.ID).
		Str("action", string(action)).
		Str("from", string(result.PreviousStatus)).
		Str("to", string(result.Room.Status)).
		Int64("actor_id", actor.ID).
		Str("warning", result.ReservationInfo.Warning).
		Msg("room status action applied")

	if result.PreviousStatus != result.Room.Status {
		payload := events.RoomStatusPayload{
			RoomID:     result.Room.ID,
			Number:     result.Room.Number,
			Status:     string(result.Room.Status),
			PrevStatus: string(result.PreviousStatus),
			Cause:      "action_" + string(action),
			Warning:    result.ReservationInfo.Warning,
		}
		if err := s.events.PublishJSON(events.EventRoomStatusChanged, payload); err != nil {
			s.log.Warn().Err(err).Msg("publish room status event failed")
		}
	}
	return &result, nil
}

func (s *Service) collectFacts(ctx context.Context, reservations *repository.ReservationRepository, room *domain.Room, today time.Time) (ReservationInfo, Facts, error) {
	facts := Facts{Current: room.Status}
	var info ReservationInfo

	active, err := reservations.CountByRoom(ctx, room.ID, domain.ActiveReservationStatuses, 0)
	if err != nil {
		return info, facts, apperror.Internal(err, "count active reservations")
	}
	checkedIn, err := reservations.CountByRoom(ctx, room.ID, []domain.ReservationStatus{domain.ReservationCheckedIn}, 0)
	if err != nil {
		return info, facts, apperror.Internal(err, "count checked-in reservations")
	}
	stay, err := reservations.FindStayOn(ctx, room.ID, today, domain.StayReservationStatuses)
	if err != nil {
		return info, facts, apperror.Internal(err, "find current stay")
	}

	facts.HasActive = active > 0
	facts.HasCheckedIn = checkedIn > 0
	facts.StayingNow = stay != nil

	info.ActiveReservations = active
	info.CheckedIn = facts.HasCheckedIn
	if stay != nil {
		si := stayInfo(stay)
		info.CurrentStay = &si
	}
	return info, facts, nil
}

func stayInfo(r *domain.Reservation) StayInfo {
	return StayInfo{
		ReservationID: r.ID,
		CheckIn:       dateutil.Format(r.CheckIn),
		CheckOut:      dateutil.Format(r.CheckOut),
		Status:        r.Status,
	}
}

func (s *Service) Create(ctx context.Context, actor domain.Principal, req CreateRoomRequest) (*domain.Room, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation("%s", validator.Describe(errs))
	}

	room := &domain.Room{
		Number:      req.Number,
		Type:        domain.RoomType(req.Type),
		Price:       req.Price,
		Capacity:    req.Capacity,
		Floor:       req.Floor,
		Status:      domain.RoomAvailable,
		Description: req.Description,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrNumberTaken
		}
		return nil, apperror.Internal(err, "create room")
	}

	s.log.Info().Int64("room_id", room.ID).Str("number", room.Number).Int64("actor_id", actor.ID).Msg("room created")
	return room, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrRoomNotFound
		}
		return nil, apperror.Internal(err, "load room")
	}
	return room, nil
}

func (s *Service) List(ctx context.Context, roomType, status string) ([]domain.Room, error) {
	f := repository.RoomFilter{Type: domain.RoomType(roomType), Status: domain.RoomStatus(status)}
	if f.Type != "" && !f.Type.Valid() {
		return nil, apperror.Validation("unknown room type %q", roomType)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperror.Validation("unknown room status %q", status)
	}

	rooms, err := s.rooms.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err, "list rooms")
	}
	return rooms, nil
}
