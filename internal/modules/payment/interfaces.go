package payment

import (
	"context"

	"tierraalta/internal/domain"
	"tierraalta/internal/modules/hotelservice"
	"tierraalta/internal/modules/reservation"
)

type paymentReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.ServicePayment, error)
}

type reservationPayments interface {
	SyncPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*reservation.StatusChange, error)
}

type servicePayments interface {
	SyncPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*hotelservice.BookingResult, error)
}
