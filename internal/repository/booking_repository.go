package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type BookingRepository interface {
	// Создать новое бронирование.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить бронирование по ID вместе с услугой и отзывом.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Обновить статус бронирования.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
	// Бронирования клиента с пагинацией, новые сверху.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]model.Booking, int64, error)
	// Последние бронирования услуг провайдера.
	ListRecentByProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]model.Booking, error)
	CountByProvider(ctx context.Context, providerID uuid.UUID, statuses ...model.BookingStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit("Service", "Customer", "Review").Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Review").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormBookingRepository) ListByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("customer_id = ?", customerID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Preload("Service").Preload("Review").Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) ListRecentByProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]model.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("Service").
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("services.provider_id = ?", providerID).
		Order("bookings.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var bookings []model.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) CountByProvider(ctx context.Context, providerID uuid.UUID, statuses ...model.BookingStatus) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("services.provider_id = ?", providerID)
	if len(statuses) > 0 {
		q = q.Where("bookings.status IN ?", statuses)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("booking_id = ?", id).Delete(&model.Review{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Booking{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
