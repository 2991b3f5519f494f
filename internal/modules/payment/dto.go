package payment

import (
	"strings"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/apperror"
)

// Kind tells which record a gateway notification refers to.
type Kind string

const (
	KindReservation Kind = "reservation"
	KindService     Kind = "service"
)

type WebhookRequest struct {
	Kind      string `json:"kind" binding:"required"`
	PaymentID int64  `json:"payment_id" binding:"required,gt=0"`
	Status    string `json:"status" binding:"required"`
	// Amount is optional; when present it must match the stored payment.
	Amount string `json:"amount"`
}

type WebhookInput struct {
	Kind      Kind
	PaymentID int64
	Status    domain.PaymentStatus
	Amount    string
}

func (r WebhookRequest) Input() (WebhookInput, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if kind != KindReservation && kind != KindService {
		return WebhookInput{}, apperror.Validation("kind must be %q or %q", KindReservation, KindService)
	}
	status := domain.PaymentStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
	if !status.Valid() || status == domain.PaymentPending {
		return WebhookInput{}, apperror.Validation("status must be APPROVED, REJECTED or REFUNDED")
	}
	return WebhookInput{Kind: kind, PaymentID: r.PaymentID, Status: status, Amount: strings.TrimSpace(r.Amount)}, nil
}

// WebhookResult reports the record the notification was applied to.
type WebhookResult struct {
	Kind        Kind                   `json:"kind"`
	PaymentID   int64                  `json:"payment_id"`
	Status      domain.PaymentStatus   `json:"status"`
	Reservation *domain.Reservation    `json:"reservation,omitempty"`
	Booking     *domain.ServiceBooking `json:"booking,omitempty"`
}
