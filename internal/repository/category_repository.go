package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error)
	FindActiveByName(ctx context.Context, name string) (*model.ServiceCategory, error)
	ListActive(ctx context.Context) ([]model.ServiceCategory, error)
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.ServiceCategory, error)
	// Возвращает created=false, если категория с таким именем уже была.
	FirstOrCreate(ctx context.Context, category *model.ServiceCategory) (bool, error)
}

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error) {
	var c model.ServiceCategory
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCategoryRepository) FindActiveByName(ctx context.Context, name string) (*model.ServiceCategory, error) {
	var c model.ServiceCategory
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCategoryRepository) ListActive(ctx context.Context) ([]model.ServiceCategory, error) {
	var categories []model.ServiceCategory
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.ServiceCategory, error) {
	if len(ids) == 0 {
		return []model.ServiceCategory{}, nil
	}
	var categories []model.ServiceCategory
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) FirstOrCreate(ctx context.Context, category *model.ServiceCategory) (bool, error) {
	var existing model.ServiceCategory
	tx := r.db.WithContext(ctx).Where("name = ?", category.Name).First(&existing)
	if tx.Error == nil {
		*category = existing
		return false, nil
	}
	if tx.Error != gorm.ErrRecordNotFound {
		return false, tx.Error
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return false, err
	}
	return true, nil
}
