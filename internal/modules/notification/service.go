package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/events"
	"tierraalta/internal/logging"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultLimit   = 20
	maxLimit       = 100
	handlerTimeout = 5 * time.Second
)

var ErrNotFound = apperror.NotFound("notification not found")

// Service keeps the guest notification feed. Entries are written by event
// handlers after the originating transaction has committed.
type Service struct {
	repo *repository.NotificationRepository
	log  *zerolog.Logger
	now  func() time.Time
}

func NewService(repo *repository.NotificationRepository, log *zerolog.Logger) *Service {
	return &Service{repo: repo, log: logging.Component(log, "notifications"), now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Subscribe attaches the feed to the events guests care about.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationStatusChanged, s.onReservationStatusChanged)
	bus.Subscribe(events.EventServiceBookingCancelled, s.onServiceBookingCancelled)
}

func (s *Service) Create(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return apperror.Internal(err, "create notification")
	}
	return nil
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err, "list notifications")
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, apperror.Internal(err, "count unread notifications")
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	if err := s.repo.MarkAsRead(ctx, id, userID, s.now()); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return apperror.Internal(err, "mark notification read")
	}
	return nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID, s.now())
	if err != nil {
		return 0, apperror.Internal(err, "mark notifications read")
	}
	return n, nil
}

// onReservationStatusChanged tells the guest about changes they did not make
// themselves.
func (s *Service) onReservationStatusChanged(e *events.Event) error {
	var p events.ReservationEventPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	if p.UserID == 0 || p.ChangedByID == p.UserID {
		return nil
	}

	n := &domain.Notification{
		UserID: p.UserID,
		Data: map[string]any{
			"reservation_id": p.ReservationID,
			"room_id":        p.RoomID,
			"check_in":       p.CheckIn,
			"check_out":      p.CheckOut,
		},
	}
	switch domain.ReservationStatus(p.Status) {
	case domain.ReservationConfirmed:
		n.Type = domain.NotifReservationConfirmed
		n.Title = "Reservation confirmed"
		n.Message = fmt.Sprintf("Your stay from %s to %s is confirmed.", p.CheckIn, p.CheckOut)
	case domain.ReservationCancelled:
		n.Type = domain.NotifReservationCancelled
		n.Title = "Reservation cancelled"
		n.Message = fmt.Sprintf("Your stay from %s to %s has been cancelled.", p.CheckIn, p.CheckOut)
	case domain.ReservationCheckedIn:
		n.Type = domain.NotifReservationCheckedIn
		n.Title = "Welcome"
		n.Message = "You are checked in. Enjoy your stay."
	case domain.ReservationCheckedOut:
		n.Type = domain.NotifReservationCheckedOut
		n.Title = "Thank you for staying with us"
		n.Message = "You are checked out. We hope to see you again."
	default:
		return nil
	}
	return s.store(n)
}

func (s *Service) onServiceBookingCancelled(e *events.Event) error {
	var p events.ServiceBookingPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	if p.UserID == 0 {
		return nil
	}
	return s.store(&domain.Notification{
		UserID:  p.UserID,
		Type:    domain.NotifServiceBookingCancel,
		Title:   "Service booking cancelled",
		Message: fmt.Sprintf("Your booking for %d participant(s) was cancelled and the places were released.", p.Participants),
		Data: map[string]any{
			"booking_id":     p.BookingID,
			"service_id":     p.ServiceID,
			"reservation_id": p.ReservationID,
		},
	})
}

func (s *Service) store(n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if err := s.Create(ctx, n); err != nil {
		return err
	}
	s.log.Debug().Int64("user_id", n.UserID).Str("type", string(n.Type)).Msg("notification stored")
	return nil
}
