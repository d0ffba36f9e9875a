package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/roadmate/internal/model"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.SystemSetting, error)
	// Создаёт или перезаписывает настройку по ключу.
	Upsert(ctx context.Context, setting *model.SystemSetting) error
	ListActive(ctx context.Context) ([]model.SystemSetting, error)
}

type GormSettingRepository struct {
	db *gorm.DB
}

func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	var s model.SystemSetting
	if err := r.db.WithContext(ctx).First(&s, "setting_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSettingRepository) Upsert(ctx context.Context, setting *model.SystemSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "is_active", "updated_at"}),
		}).
		Create(setting).Error
}

func (r *GormSettingRepository) ListActive(ctx context.Context) ([]model.SystemSetting, error) {
	var settings []model.SystemSetting
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("setting_key ASC").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}
