package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
)

type MotorcycleRepository struct {
	db *gorm.DB
}

var _ services.MotorcycleRepository = (*MotorcycleRepository)(nil)

func NewMotorcycleRepository(db *gorm.DB) *MotorcycleRepository {
	return &MotorcycleRepository{db: db}
}

func (r *MotorcycleRepository) ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error) {
	list := make([]models.Motorcycle, 0)
	err := r.db.WithContext(ctx).Order("category ASC, price ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *MotorcycleRepository) FindMotorcycle(ctx context.Context, id uint) (*models.Motorcycle, error) {
	var m models.Motorcycle
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrMotorcycleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MotorcycleRepository) CreateMotorcycle(ctx context.Context, m *models.Motorcycle) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MotorcycleRepository) UpdateMotorcycle(ctx context.Context, m *models.Motorcycle) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MotorcycleRepository) DeleteMotorcycle(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Motorcycle{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrMotorcycleNotFound
	}
	return nil
}

// UpsertByName inserts m or updates the motorcycle with the same name. Used by the seeder.
func (r *MotorcycleRepository) UpsertByName(ctx context.Context, m *models.Motorcycle) (created bool, err error) {
	var existing models.Motorcycle
	err = r.db.WithContext(ctx).Where("name = ?", m.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.CreateMotorcycle(ctx, m)
	}
	if err != nil {
		return false, err
	}
	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	return false, r.UpdateMotorcycle(ctx, m)
}
