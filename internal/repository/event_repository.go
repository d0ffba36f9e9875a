package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	// События по заявке в порядке возникновения.
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Event, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormEventRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
