package repository

import (
	"context"

	"tierraalta/internal/domain"

	"gorm.io/gorm"
)

type HotelServiceRepository struct {
	db *gorm.DB
}

func NewHotelServiceRepository(db *gorm.DB) *HotelServiceRepository {
	return &HotelServiceRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *HotelServiceRepository) WithTx(tx *gorm.DB) *HotelServiceRepository {
	return &HotelServiceRepository{db: tx}
}

func (r *HotelServiceRepository) Create(ctx context.Context, s *domain.HotelService) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *HotelServiceRepository) GetByID(ctx context.Context, id int64) (*domain.HotelService, error) {
	var s domain.HotelService
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *HotelServiceRepository) List(ctx context.Context, serviceType domain.ServiceType, activeOnly bool) ([]domain.HotelService, error) {
	q := r.db.WithContext(ctx).Model(&domain.HotelService{})
	if serviceType != "" {
		q = q.Where("type = ?", serviceType)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var out []domain.HotelService
	if err := q.Order("type ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the given columns and returns the stored row.
func (r *HotelServiceRepository) Update(ctx context.Context, id int64, updates map[string]any) (*domain.HotelService, error) {
	res := r.db.WithContext(ctx).Model(&domain.HotelService{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *HotelServiceRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.HotelService{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
