package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// Сессия, срок которой ещё не истёк на момент now.
	GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*model.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Omit("User").Create(session).Error
}

func (r *GormSessionRepository) GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, now).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Session{}, "id = ?", id).Error
}

func (r *GormSessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Session{}).Error
}

func (r *GormSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
