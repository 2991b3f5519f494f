package repository

import (
	"context"
	"errors"
	"time"

	"tierraalta/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ReservationRepository) WithTx(tx *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: tx}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(res).Error
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Payment").
		First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetForUpdate loads the reservation under a row lock.
func (r *ReservationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindOverlapping returns active reservations of the room whose stay overlaps
// [checkIn, checkOut). excludeID skips one reservation (0 skips none).
func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", domain.ActiveReservationStatuses).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var out []domain.Reservation
	if err := q.Order("check_in ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus, cancelledAt *time.Time) error {
	updates := map[string]any{"status": status}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
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

// CountByRoom counts reservations of the room in the given statuses.
func (r *ReservationRepository) CountByRoom(ctx context.Context, roomID int64, statuses []domain.ReservationStatus, excludeID int64) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("room_id = ? AND status IN ?", roomID, statuses)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// FindStayOn returns the reservation of the room in the given statuses whose
// stay contains day, or nil.
func (r *ReservationRepository) FindStayOn(ctx context.Context, roomID int64, day time.Time, statuses []domain.ReservationStatus) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID, statuses).
		Where("check_in <= ? AND check_out > ?", day, day).
		Order("check_in ASC").
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindCheckInsBetween returns active reservations of the room arriving within
// [from, to] inclusive.
func (r *ReservationRepository) FindCheckInsBetween(ctx context.Context, roomID int64, from, to time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID, domain.ActiveReservationStatuses).
		Where("check_in >= ? AND check_in <= ?", from, to).
		Order("check_in ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("check_in DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInRange returns every reservation whose stay overlaps [from, to).
func (r *ReservationRepository) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Payment").
		Where("check_in < ? AND check_out > ?", to, from).
		Order("check_in ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
