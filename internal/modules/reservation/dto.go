package reservation

import (
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/dateutil"
)

type CreateReservationRequest struct {
	RoomID          int64  `json:"room_id" binding:"required,gt=0"`
	CheckIn         string `json:"check_in" binding:"required"`
	CheckOut        string `json:"check_out" binding:"required"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

type UpdateStatusRequest struct {
	Status domain.ReservationStatus `json:"status" binding:"required"`
}

type AvailabilityQuery struct {
	CheckIn  string `form:"check_in" binding:"required"`
	CheckOut string `form:"check_out" binding:"required"`
	Guests   int    `form:"guests"`
	Type     string `form:"type"`
}

type ExportQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// CreateInput is a parsed reservation request.
type CreateInput struct {
	UserID          int64
	RoomID          int64
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	SpecialRequests string
}

// SearchInput is a parsed availability query.
type SearchInput struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Type     domain.RoomType
}

func (r CreateReservationRequest) Input(userID int64) (CreateInput, error) {
	checkIn, checkOut, err := parseStay(r.CheckIn, r.CheckOut)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		UserID:          userID,
		RoomID:          r.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          r.Guests,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

func (q AvailabilityQuery) Input() (SearchInput, error) {
	checkIn, checkOut, err := parseStay(q.CheckIn, q.CheckOut)
	if err != nil {
		return SearchInput{}, err
	}
	in := SearchInput{CheckIn: checkIn, CheckOut: checkOut, Guests: q.Guests, Type: domain.RoomType(q.Type)}
	if in.Guests == 0 {
		in.Guests = 1
	}
	if in.Type != "" && !in.Type.Valid() {
		return SearchInput{}, apperror.Validation("unknown room type %q", q.Type)
	}
	return in, nil
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := dateutil.ParseLocalDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("check_in: %v", err)
	}
	out, err := dateutil.ParseLocalDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("check_out: %v", err)
	}
	return in, out, nil
}

// View is the reservation as returned to callers.
type View struct {
	*domain.Reservation
	Nights int `json:"nights"`
}

func newView(r *domain.Reservation) View {
	return View{Reservation: r, Nights: r.Nights()}
}

// AvailableRoom is a room free for the whole requested stay.
type AvailableRoom struct {
	domain.Room
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
}

// StatusChange is the outcome of a reservation status update.
type StatusChange struct {
	Reservation       *domain.Reservation `json:"reservation"`
	RoomStatusUpdated bool                `json:"room_status_updated"`
	RoomStatus        domain.RoomStatus   `json:"room_status,omitempty"`
	CancelledServices int                 `json:"cancelled_services,omitempty"`
}
