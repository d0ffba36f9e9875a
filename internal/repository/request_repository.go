package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type ServiceRequestRepository interface {
	Create(ctx context.Context, req *model.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) error
	// Все заявки клиента, новые сверху.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.ServiceRequest, error)
	// Заявки провайдеру, новые сверху; limit <= 0: без ограничения.
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]model.ServiceRequest, error)
	ListRecent(ctx context.Context, limit int) ([]model.ServiceRequest, error)
	// Подсчёт по всей таблице, без статусов: все заявки.
	CountByProvider(ctx context.Context, providerID uuid.UUID, statuses ...model.RequestStatus) (int64, error)
	Count(ctx context.Context, statuses ...model.RequestStatus) (int64, error)
}

type GormServiceRequestRepository struct {
	db *gorm.DB
}

func NewGormServiceRequestRepository(db *gorm.DB) *GormServiceRequestRepository {
	return &GormServiceRequestRepository{db: db}
}

func (r *GormServiceRequestRepository) Create(ctx context.Context, req *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Omit("Provider", "Customer", "ServiceCategory").Create(req).Error
}

func (r *GormServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormServiceRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *GormServiceRequestRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("ServiceCategory").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormServiceRequestRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]model.ServiceRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("ServiceCategory").
		Where("provider_id = ?", providerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var requests []model.ServiceRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormServiceRequestRepository) ListRecent(ctx context.Context, limit int) ([]model.ServiceRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Provider").
		Preload("ServiceCategory").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var requests []model.ServiceRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormServiceRequestRepository) CountByProvider(ctx context.Context, providerID uuid.UUID, statuses ...model.RequestStatus) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("provider_id = ?", providerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormServiceRequestRepository) Count(ctx context.Context, statuses ...model.RequestStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ServiceRequest{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
