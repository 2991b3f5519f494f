package repository

import (
	"context"
	"time"

	"tierraalta/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceBookingRepository struct {
	db *gorm.DB
}

func NewServiceBookingRepository(db *gorm.DB) *ServiceBookingRepository {
	return &ServiceBookingRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ServiceBookingRepository) WithTx(tx *gorm.DB) *ServiceBookingRepository {
	return &ServiceBookingRepository{db: tx}
}

func (r *ServiceBookingRepository) Create(ctx context.Context, b *domain.ServiceBooking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *ServiceBookingRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceBooking, error) {
	var b domain.ServiceBooking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Payment").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ServiceBookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.ServiceBooking, error) {
	var b domain.ServiceBooking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ServiceBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceBookingStatus, cancelledAt *time.Time) error {
	updates := map[string]any{"status": status}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}
	res := r.db.WithContext(ctx).
		Model(&domain.ServiceBooking{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCancellableByReservation returns the bookings attached to a stay that
// still hold slot capacity.
func (r *ServiceBookingRepository) ListCancellableByReservation(ctx context.Context, reservationID int64) ([]domain.ServiceBooking, error) {
	var out []domain.ServiceBooking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reservation_id = ? AND status IN ?", reservationID,
			[]domain.ServiceBookingStatus{domain.ServiceBookingPending, domain.ServiceBookingConfirmed}).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ServiceBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ServiceBooking, error) {
	var out []domain.ServiceBooking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("booking_date DESC, booking_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByService counts every booking of the service, cancelled ones
// included, since they still reference it.
func (r *ServiceBookingRepository) CountByService(ctx context.Context, serviceID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.ServiceBooking{}).
		Where("service_id = ?", serviceID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
