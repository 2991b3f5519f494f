package room

import "tierraalta/internal/domain"

type CreateRoomRequest struct {
	Number      string  `json:"number" validate:"required,max=16"`
	Type        string  `json:"type" validate:"required,oneof=SUITE_SINGLE SUITE_DOUBLE VILLA_PETIT VILLA_GRANDE"`
	Price       float64 `json:"price" validate:"gt=0"`
	Capacity    int     `json:"capacity" validate:"gt=0,lte=20"`
	Floor       int     `json:"floor" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
}

type StatusActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// StayInfo summarizes a reservation for the front desk.
type StayInfo struct {
	ReservationID int64                    `json:"reservation_id"`
	CheckIn       string                   `json:"check_in"`
	CheckOut      string                   `json:"check_out"`
	Status        domain.ReservationStatus `json:"status"`
}

// ReservationInfo is what the room's bookings looked like when an action ran.
type ReservationInfo struct {
	ActiveReservations int64      `json:"active_reservations"`
	CheckedIn          bool       `json:"checked_in"`
	CurrentStay        *StayInfo  `json:"current_stay,omitempty"`
	UpcomingCheckIns   []StayInfo `json:"upcoming_check_ins,omitempty"`
	Warning            string     `json:"warning,omitempty"`
}

type ActionResult struct {
	Room            *domain.Room      `json:"room"`
	PreviousStatus  domain.RoomStatus `json:"previous_status"`
	ReservationInfo ReservationInfo   `json:"reservation_info"`
}
