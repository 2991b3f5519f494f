package domain

import (
	"time"

	"tierraalta/internal/pkg/dateutil"

	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceSpa        ServiceType = "SPA"
	ServiceExperience ServiceType = "EXPERIENCE"
)

// ServiceCategories lists the categories allowed for each service type.
var ServiceCategories = map[ServiceType][]string{
	ServiceSpa:        {"MASSAGE", "FACIAL", "BODY_TREATMENT", "WELLNESS"},
	ServiceExperience: {"TOUR", "GASTRONOMY", "ADVENTURE", "CULTURAL"},
}

func (t ServiceType) Valid() bool {
	_, ok := ServiceCategories[t]
	return ok
}

func (t ServiceType) AllowsCategory(category string) bool {
	for _, c := range ServiceCategories[t] {
		if c == category {
			return true
		}
	}
	return false
}

type HotelService struct {
	ID             int64       `json:"id" gorm:"primaryKey"`
	Name           string      `json:"name" gorm:"size:120;not null"`
	Description    string      `json:"description,omitempty" gorm:"type:text"`
	Type           ServiceType `json:"type" gorm:"type:varchar(16);not null;index"`
	Category       string      `json:"category" gorm:"type:varchar(32);not null"`
	Price          float64     `json:"price" gorm:"not null"`
	PricePerPerson bool        `json:"price_per_person"`
	Duration       int         `json:"duration" gorm:"not null"`
	MinCapacity    int         `json:"min_capacity" gorm:"not null"`
	MaxCapacity    int         `json:"max_capacity" gorm:"not null"`
	AvailableDays  []string    `json:"available_days" gorm:"serializer:json;type:text"`
	StartTime      string      `json:"start_time" gorm:"type:varchar(5);not null"`
	EndTime        string      `json:"end_time" gorm:"type:varchar(5);not null"`
	SlotInterval   int         `json:"slot_interval" gorm:"not null"`
	IsActive       bool        `json:"is_active" gorm:"not null"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OffersOn reports whether the weekly schedule includes the weekday of day.
func (s *HotelService) OffersOn(day time.Time) bool {
	name := dateutil.WeekdayName(day)
	for _, d := range s.AvailableDays {
		if d == name {
			return true
		}
	}
	return false
}

// PriceFor returns the booking total for the given party size.
func (s *HotelService) PriceFor(participants int) float64 {
	if s.PricePerPerson {
		return s.Price * float64(participants)
	}
	return s.Price
}

// ServiceTimeSlot is a bookable window keyed by service, day and start time.
type ServiceTimeSlot struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ServiceID   int64     `json:"service_id" gorm:"not null;uniqueIndex:idx_service_slot_key"`
	Date        time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_service_slot_key"`
	StartTime   string    `json:"start_time" gorm:"type:varchar(5);not null;uniqueIndex:idx_service_slot_key"`
	EndTime     string    `json:"end_time" gorm:"type:varchar(5);not null"`
	Capacity    int       `json:"capacity" gorm:"not null;check:capacity >= 0"`
	Booked      int       `json:"booked" gorm:"not null;default:0;check:booked >= 0 AND booked <= capacity"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *ServiceTimeSlot) AfterFind(*gorm.DB) error {
	s.Date = dateutil.Normalize(s.Date)
	return nil
}

func (s *ServiceTimeSlot) Remaining() int {
	if s.Booked >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Booked
}

type ServiceBookingStatus string

const (
	ServiceBookingPending   ServiceBookingStatus = "PENDING"
	ServiceBookingConfirmed ServiceBookingStatus = "CONFIRMED"
	ServiceBookingCompleted ServiceBookingStatus = "COMPLETED"
	ServiceBookingCancelled ServiceBookingStatus = "CANCELLED"
)

// Cancellable reports whether the booking still holds slot capacity that a
// cancellation may release.
func (s ServiceBookingStatus) Cancellable() bool {
	return s == ServiceBookingPending || s == ServiceBookingConfirmed
}

type ServiceBooking struct {
	ID              int64                `json:"id" gorm:"primaryKey"`
	UserID          int64                `json:"user_id" gorm:"not null;index"`
	ServiceID       int64                `json:"service_id" gorm:"not null;index"`
	TimeSlotID      int64                `json:"time_slot_id" gorm:"not null;index"`
	ReservationID   int64                `json:"reservation_id" gorm:"not null;index"`
	BookingDate     time.Time            `json:"booking_date" gorm:"type:date;not null"`
	BookingTime     string               `json:"booking_time" gorm:"type:varchar(5);not null"`
	Participants    int                  `json:"participants" gorm:"not null"`
	TotalPrice      float64              `json:"total_price" gorm:"not null"`
	Status          ServiceBookingStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	SpecialRequests string               `json:"special_requests,omitempty" gorm:"type:text"`
	CancelledAt     *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`

	Service *HotelService   `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Payment *ServicePayment `json:"payment,omitempty" gorm:"foreignKey:ServiceBookingID"`
}

func (b *ServiceBooking) AfterFind(*gorm.DB) error {
	b.BookingDate = dateutil.Normalize(b.BookingDate)
	return nil
}
