package domain

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected, PaymentRefunded:
		return true
	}
	return false
}

// Payment is paired 1:1 with a reservation. Its id is the external reference
// handed to the payment gateway.
type Payment struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	ReservationID int64         `json:"reservation_id" gorm:"uniqueIndex;not null"`
	Amount        float64       `json:"amount" gorm:"not null"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Provider      string        `json:"provider,omitempty" gorm:"size:32"`
	ExternalID    string        `json:"external_id,omitempty" gorm:"size:128"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ServicePayment is paired 1:1 with a service booking.
type ServicePayment struct {
	ID               int64         `json:"id" gorm:"primaryKey"`
	ServiceBookingID int64         `json:"service_booking_id" gorm:"uniqueIndex;not null"`
	Amount           float64       `json:"amount" gorm:"not null"`
	Status           PaymentStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Provider         string        `json:"provider,omitempty" gorm:"size:32"`
	ExternalID       string        `json:"external_id,omitempty" gorm:"size:128"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
