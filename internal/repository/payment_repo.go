package repository

import (
	"context"
	"time"

	"tierraalta/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository stores both reservation payments and service payments.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus, paidAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ?", id).
		Updates(paymentUpdates(status, paidAt)).Error
}

func (r *PaymentRepository) CreateService(ctx context.Context, p *domain.ServicePayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetServiceByBookingID(ctx context.Context, bookingID int64) (*domain.ServicePayment, error) {
	var p domain.ServicePayment
	if err := r.db.WithContext(ctx).Where("service_booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetServiceByID(ctx context.Context, id int64) (*domain.ServicePayment, error) {
	var p domain.ServicePayment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetServiceForUpdate(ctx context.Context, id int64) (*domain.ServicePayment, error) {
	var p domain.ServicePayment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) UpdateServiceStatus(ctx context.Context, id int64, status domain.PaymentStatus, paidAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.ServicePayment{}).
		Where("id = ?", id).
		Updates(paymentUpdates(status, paidAt)).Error
}

func paymentUpdates(status domain.PaymentStatus, paidAt *time.Time) map[string]any {
	updates := map[string]any{"status": status}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	return updates
}
