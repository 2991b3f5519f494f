package domain

import (
	"time"

	"tierraalta/internal/pkg/dateutil"

	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "PENDING"
	ReservationConfirmed  ReservationStatus = "CONFIRMED"
	ReservationCheckedIn  ReservationStatus = "CHECKED_IN"
	ReservationCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationCancelled  ReservationStatus = "CANCELLED"
)

// ActiveReservationStatuses hold the room for their dates.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
	ReservationCheckedIn,
}

// StayReservationStatuses mark a stay that keeps the room in use.
var StayReservationStatuses = []ReservationStatus{
	ReservationConfirmed,
	ReservationCheckedIn,
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCheckedIn, ReservationCheckedOut, ReservationCancelled:
		return true
	}
	return false
}

func (s ReservationStatus) Active() bool {
	for _, a := range ActiveReservationStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return s == ReservationCheckedOut || s == ReservationCancelled
}

type Reservation struct {
	ID              int64             `json:"id" gorm:"primaryKey"`
	UserID          int64             `json:"user_id" gorm:"not null;index"`
	RoomID          int64             `json:"room_id" gorm:"not null;index:idx_reservations_room_status"`
	CheckIn         time.Time         `json:"check_in" gorm:"type:date;not null"`
	CheckOut        time.Time         `json:"check_out" gorm:"type:date;not null"`
	Guests          int               `json:"guests" gorm:"not null"`
	TotalPrice      float64           `json:"total_price" gorm:"not null"`
	Status          ReservationStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index:idx_reservations_room_status"`
	SpecialRequests string            `json:"special_requests,omitempty" gorm:"type:text"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	Room    *Room    `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:ReservationID"`
}

func (r *Reservation) AfterFind(*gorm.DB) error {
	r.CheckIn = dateutil.Normalize(r.CheckIn)
	r.CheckOut = dateutil.Normalize(r.CheckOut)
	return nil
}

func (r *Reservation) Nights() int {
	return dateutil.NightsBetween(r.CheckIn, r.CheckOut)
}
