package domain

import "time"

type NotificationType string

const (
	NotifReservationConfirmed  NotificationType = "reservation_confirmed"
	NotifReservationCancelled  NotificationType = "reservation_cancelled"
	NotifReservationCheckedIn  NotificationType = "reservation_checked_in"
	NotifReservationCheckedOut NotificationType = "reservation_checked_out"
	NotifServiceBookingCancel  NotificationType = "service_booking_cancelled"
)

// Notification is an in-app message for a guest.
type Notification struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	UserID    int64            `json:"user_id" gorm:"not null;index:idx_notifications_user_unread"`
	Type      NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title     string           `json:"title" gorm:"size:160;not null"`
	Message   string           `json:"message,omitempty" gorm:"type:text"`
	Data      map[string]any   `json:"data,omitempty" gorm:"serializer:json;type:text"`
	IsRead    bool             `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_unread"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}
