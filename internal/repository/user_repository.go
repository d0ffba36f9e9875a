package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Email сравнивается без учёта регистра.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// Количество пользователей без флага is_staff.
	CountNonStaff(ctx context.Context) (int64, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("ServiceProvider").Save(user).Error
}

func (r *GormUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).
		Error
}

func (r *GormUserRepository) CountNonStaff(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_staff = ?", false).
		Count(&n).Error
	return n, err
}
