package payment

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"tierraalta/internal/domain"
	"tierraalta/internal/logging"
	"tierraalta/internal/pkg/apperror"
	"tierraalta/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrPaymentNotFound = apperror.NotFound("payment not found")
	ErrAmountMismatch  = apperror.Conflict("amount does not match the payment record")
)

// Service applies payment gateway outcomes to the payment records created
// alongside reservations and service bookings.
type Service struct {
	payments     paymentReader
	reservations reservationPayments
	services     servicePayments
	log          *zerolog.Logger
}

func NewService(payments paymentReader, reservations reservationPayments, services servicePayments, log *zerolog.Logger) *Service {
	return &Service{
		payments:     payments,
		reservations: reservations,
		services:     services,
		log:          logging.OrNop(log),
	}
}

func (s *Service) HandleWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	stored, err := s.storedAmount(ctx, in.Kind, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if in.Amount != "" && !amountEqual(in.Amount, stored) {
		s.log.Warn().
			Str("kind", string(in.Kind)).
			Int64("payment_id", in.PaymentID).
			Str("callback_amount", in.Amount).
			Float64("expected_amount", stored).
			Msg("payment webhook amount mismatch")
		return nil, ErrAmountMismatch
	}

	result := &WebhookResult{Kind: in.Kind, PaymentID: in.PaymentID, Status: in.Status}
	switch in.Kind {
	case KindReservation:
		change, err := s.reservations.SyncPaymentStatus(ctx, in.PaymentID, in.Status)
		if err != nil {
			return nil, err
		}
		result.Reservation = change.Reservation
	case KindService:
		synced, err := s.services.SyncPaymentStatus(ctx, in.PaymentID, in.Status)
		if err != nil {
			return nil, err
		}
		result.Booking = synced.Booking
	}

	s.log.Info().
		Str("kind", string(in.Kind)).
		Int64("payment_id", in.PaymentID).
		Str("status", string(in.Status)).
		Msg("payment webhook applied")
	return result, nil
}

func (s *Service) storedAmount(ctx context.Context, kind Kind, id int64) (float64, error) {
	var (
		amount float64
		err    error
	)
	switch kind {
	case KindReservation:
		var p *domain.Payment
		if p, err = s.payments.GetByID(ctx, id); err == nil {
			amount = p.Amount
		}
	case KindService:
		var p *domain.ServicePayment
		if p, err = s.payments.GetServiceByID(ctx, id); err == nil {
			amount = p.Amount
		}
	default:
		return 0, apperror.Validation("unknown payment kind %q", kind)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, ErrPaymentNotFound
		}
		return 0, apperror.Internal(err, "load payment")
	}
	return amount, nil
}

// amountEqual compares a decimal string with a stored amount to the cent.
func amountEqual(callback string, stored float64) bool {
	got, ok := new(big.Rat).SetString(strings.TrimSpace(callback))
	if !ok {
		return false
	}
	want, ok := new(big.Rat).SetString(strconv.FormatFloat(stored, 'f', 2, 64))
	if !ok {
		return false
	}
	return got.Cmp(want) == 0
}
