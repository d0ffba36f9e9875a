package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("Booking").Create(review).Error
}

func (r *GormReviewRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Review, error) {
	var rv model.Review
	if err := r.db.WithContext(ctx).First(&rv, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Review{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
