package hotelservice

import (
	"strings"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/pkg/dateutil"
)

type CreateServiceRequest struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Description    string   `json:"description" validate:"max=2000"`
	Type           string   `json:"type" validate:"required,oneof=SPA EXPERIENCE"`
	Category       string   `json:"category" validate:"required,max=32"`
	Price          float64  `json:"price" validate:"gt=0"`
	PricePerPerson bool     `json:"price_per_person"`
	Duration       int      `json:"duration" validate:"gt=0,lte=720"`
	MinCapacity    int      `json:"min_capacity" validate:"gte=1"`
	MaxCapacity    int      `json:"max_capacity" validate:"gte=1,lte=100"`
	AvailableDays  []string `json:"available_days" validate:"required,min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime      string   `json:"start_time" validate:"required,clock"`
	EndTime        string   `json:"end_time" validate:"required,clock"`
	SlotInterval   int      `json:"slot_interval" validate:"gt=0,lte=720"`
	IsActive       *bool    `json:"is_active"`
}

type UpdateServiceRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	Price          *float64 `json:"price" validate:"omitempty,gt=0"`
	PricePerPerson *bool    `json:"price_per_person"`
	IsActive       *bool    `json:"is_active"`
}

func (r UpdateServiceRequest) updates() map[string]any {
	out := map[string]any{}
	if r.Name != nil {
		out["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		out["description"] = *r.Description
	}
	if r.Price != nil {
		out["price"] = *r.Price
	}
	if r.PricePerPerson != nil {
		out["price_per_person"] = *r.PricePerPerson
	}
	if r.IsActive != nil {
		out["is_active"] = *r.IsActive
	}
	return out
}

type GenerateSlotsRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type SlotQuery struct {
	Date string `form:"date" binding:"required"`
}

type UpdateSlotRequest struct {
	Capacity    *int  `json:"capacity"`
	IsAvailable *bool `json:"is_available"`
}

type BookRequest struct {
	ServiceID       int64  `json:"service_id" binding:"required,gt=0"`
	ReservationID   int64  `json:"reservation_id" binding:"required,gt=0"`
	BookingDate     string `json:"booking_date" binding:"required"`
	BookingTime     string `json:"booking_time" binding:"required"`
	Participants    int    `json:"participants" binding:"required,gt=0"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

// BookInput is a booking request with its date and time already parsed.
type BookInput struct {
	ServiceID       int64
	ReservationID   int64
	Date            time.Time
	Time            string
	Participants    int
	SpecialRequests string
}

func (r BookRequest) Input() (BookInput, error) {
	day, err := dateutil.ParseLocalDate(r.BookingDate)
	if err != nil {
		return BookInput{}, apperror.Validation("booking_date: %v", err)
	}
	minutes, err := dateutil.ParseClock(r.BookingTime)
	if err != nil {
		return BookInput{}, apperror.Validation("booking_time: %v", err)
	}
	return BookInput{
		ServiceID:       r.ServiceID,
		ReservationID:   r.ReservationID,
		Date:            day,
		Time:            dateutil.FormatClock(minutes),
		Participants:    r.Participants,
		SpecialRequests: strings.TrimSpace(r.SpecialRequests),
	}, nil
}

// SlotView is a slot together with the places still free on it.
type SlotView struct {
	domain.ServiceTimeSlot
	Remaining int `json:"remaining"`
}

type BookingResult struct {
	Booking *domain.ServiceBooking `json:"booking"`
	Payment *domain.ServicePayment `json:"payment"`
}
