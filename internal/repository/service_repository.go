package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

// ServiceRepository: предложения (листинги) провайдеров.
type ServiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	Create(ctx context.Context, service *model.Service) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Service, int64, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) Create(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).Omit("Provider", "Category").Create(service).Error
}

func (r *GormServiceRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Service, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Service{}).
		Where("provider_id = ?", providerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []model.Service
	if err := q.Preload("Category").Order("title ASC").Find(&services).Error; err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *GormServiceRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Service{}).
		Where("id = ?", id).
		Update("is_available", available).
		Error
}
