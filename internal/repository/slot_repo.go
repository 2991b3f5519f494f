package repository

import (
	"context"
	"time"

	"tierraalta/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotRepository owns the booked/capacity counters of service time slots.
// Every counter change is a single conditional UPDATE so concurrent writers
// cannot lose an update or push booked past capacity.
type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *SlotRepository) WithTx(tx *gorm.DB) *SlotRepository {
	return &SlotRepository{db: tx}
}

var slotKey = []clause.Column{{Name: "service_id"}, {Name: "date"}, {Name: "start_time"}}

// InsertMissing inserts the slots whose (service, date, start time) key does
// not exist yet and returns how many rows were created. Existing slots are
// left untouched.
func (r *SlotRepository) InsertMissing(ctx context.Context, slots []domain.ServiceTimeSlot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: slotKey, DoNothing: true}).
		CreateInBatches(&slots, 200)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceTimeSlot, error) {
	var slot domain.ServiceTimeSlot
	if err := r.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) FindByKey(ctx context.Context, serviceID int64, day time.Time, startTime string) (*domain.ServiceTimeSlot, error) {
	var slot domain.ServiceTimeSlot
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND date = ? AND start_time = ?", serviceID, day, startTime).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) ListByServiceAndDate(ctx context.Context, serviceID int64, day time.Time) ([]domain.ServiceTimeSlot, error) {
	var out []domain.ServiceTimeSlot
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND date = ?", serviceID, day).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementBooked reserves n places on an available slot. It reports false
// when the slot is unavailable or lacks n free places.
func (r *SlotRepository) IncrementBooked(ctx context.Context, id int64, n int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.ServiceTimeSlot{}).
		Where("id = ? AND is_available = ? AND booked + ? <= capacity", id, true, n).
		Update("booked", gorm.Expr("booked + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DecrementBooked releases n places. It reports false when fewer than n
// places are booked.
func (r *SlotRepository) DecrementBooked(ctx context.Context, id int64, n int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.ServiceTimeSlot{}).
		Where("id = ? AND booked >= ?", id, n).
		Update("booked", gorm.Expr("booked - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateCapacity sets a new capacity unless it would fall below booked.
func (r *SlotRepository) UpdateCapacity(ctx context.Context, id int64, capacity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.ServiceTimeSlot{}).
		Where("id = ? AND booked <= ?", id, capacity).
		Update("capacity", capacity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SlotRepository) SetAvailable(ctx context.Context, id int64, available bool) error {
	res := r.db.WithContext(ctx).
		Model(&domain.ServiceTimeSlot{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteIfEmpty removes the slot only while nothing is booked on it.
func (r *SlotRepository) DeleteIfEmpty(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND booked = 0", id).
		Delete(&domain.ServiceTimeSlot{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteEmptyByService removes every unbooked slot of the service.
func (r *SlotRepository) DeleteEmptyByService(ctx context.Context, serviceID int64) error {
	return r.db.WithContext(ctx).
		Where("service_id = ? AND booked = 0", serviceID).
		Delete(&domain.ServiceTimeSlot{}).Error
}
