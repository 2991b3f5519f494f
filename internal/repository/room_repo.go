package repository

import (
	"context"
	"time"

	"tierraalta/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx}
}

type RoomFilter struct {
	Type   domain.RoomType
	Status domain.RoomStatus
}

type AvailabilityFilter struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Type     domain.RoomType
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetForUpdate loads the room and holds its row lock until the surrounding
// transaction ends.
func (r *RoomRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RoomRepository) List(ctx context.Context, f RoomFilter) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Model(&domain.Room{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var rooms []domain.Room
	if err := q.Order("number ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListAvailable returns bookable rooms that fit the party and have no active
// reservation overlapping [CheckIn, CheckOut).
func (r *RoomRepository) ListAvailable(ctx context.Context, f AvailabilityFilter) ([]domain.Room, error) {
	busy := r.db.Model(&domain.Reservation{}).
		Select("1").
		Where("reservations.room_id = rooms.id").
		Where("reservations.status IN ?", domain.ActiveReservationStatuses).
		Where("reservations.check_in < ? AND reservations.check_out > ?", f.CheckOut, f.CheckIn)

	q := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("rooms.status NOT IN ?", []domain.RoomStatus{domain.RoomClosed, domain.RoomMaintenance}).
		Where("rooms.capacity >= ?", f.Guests).
		Where("NOT EXISTS (?)", busy)
	if f.Type != "" {
		q = q.Where("rooms.type = ?", f.Type)
	}

	var rooms []domain.Room
	if err := q.Order("rooms.price ASC, rooms.number ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}
