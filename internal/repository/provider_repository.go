package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

// ProviderFilter: nil означает "не фильтровать".
type ProviderFilter struct {
	Approved *bool
	Active   *bool
}

type ProviderRepository interface {
	// Провайдер вместе с пользователем и категориями.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceProvider, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ServiceProvider, error)
	FindByUsername(ctx context.Context, username string) (*model.ServiceProvider, error)
	// Только подтверждённый и активный провайдер: к нему можно отправить заявку.
	GetBookable(ctx context.Context, id uuid.UUID) (*model.ServiceProvider, error)
	// Создаёт провайдера и связи с уже существующими категориями.
	Create(ctx context.Context, provider *model.ServiceProvider) error
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	List(ctx context.Context, f ProviderFilter) ([]model.ServiceProvider, error)
	ListBookableByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.ServiceProvider, error)
	Count(ctx context.Context, f ProviderFilter) (int64, error)
	// Удаляет провайдера, его пользователя и всё, что на них ссылается.
	// Атомарность обеспечивает вызывающий (репозиторий на транзакции).
	DeleteWithUser(ctx context.Context, provider *model.ServiceProvider) error
}

type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("ServiceCategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("service_categories.name ASC")
		})
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceProvider, error) {
	var p model.ServiceProvider
	if err := r.withRelations(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ServiceProvider, error) {
	var p model.ServiceProvider
	if err := r.withRelations(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) FindByUsername(ctx context.Context, username string) (*model.ServiceProvider, error) {
	var p model.ServiceProvider
	err := r.withRelations(ctx).
		Joins("JOIN users ON users.id = service_providers.user_id").
		Where("users.username = ?", username).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) GetBookable(ctx context.Context, id uuid.UUID) (*model.ServiceProvider, error) {
	var p model.ServiceProvider
	err := r.withRelations(ctx).
		Where("id = ? AND is_approved = ? AND is_active = ?", id, true, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) Create(ctx context.Context, provider *model.ServiceProvider) error {
	// Категории не апсертим, только пишем связи.
	return r.db.WithContext(ctx).Omit("User", "ServiceCategories.*").Create(provider).Error
}

func (r *GormProviderRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.ServiceProvider{}).
		Where("id = ?", id).
		Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func applyProviderFilter(q *gorm.DB, f ProviderFilter) *gorm.DB {
	if f.Approved != nil {
		q = q.Where("service_providers.is_approved = ?", *f.Approved)
	}
	if f.Active != nil {
		q = q.Where("service_providers.is_active = ?", *f.Active)
	}
	return q
}

func (r *GormProviderRepository) List(ctx context.Context, f ProviderFilter) ([]model.ServiceProvider, error) {
	var providers []model.ServiceProvider
	q := applyProviderFilter(r.withRelations(ctx).Model(&model.ServiceProvider{}), f)
	if err := q.Order("service_providers.created_at DESC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *GormProviderRepository) ListBookableByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.ServiceProvider, error) {
	var providers []model.ServiceProvider
	err := r.withRelations(ctx).
		Joins("JOIN provider_categories ON provider_categories.service_provider_id = service_providers.id").
		Where("provider_categories.service_category_id = ?", categoryID).
		Where("service_providers.is_approved = ? AND service_providers.is_active = ?", true, true).
		Order("service_providers.company_name ASC").
		Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *GormProviderRepository) Count(ctx context.Context, f ProviderFilter) (int64, error) {
	var n int64
	q := applyProviderFilter(r.db.WithContext(ctx).Model(&model.ServiceProvider{}), f)
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormProviderRepository) DeleteWithUser(ctx context.Context, provider *model.ServiceProvider) error {
	db := r.db.WithContext(ctx)

	// Подзапросы строим заново для каждого шага: *gorm.DB с собранным SQL
	// нельзя безопасно переиспользовать как аргумент.
	serviceIDs := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Service{}).Select("id").Where("provider_id = ?", provider.ID)
	}
	bookingIDs := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Booking{}).Select("id").
			Where("service_id IN (?) OR customer_id = ?", serviceIDs(), provider.UserID)
	}

	steps := []func() error{
		func() error {
			return db.Where("booking_id IN (?)", bookingIDs()).Delete(&model.Review{}).Error
		},
		func() error {
			return db.Where("service_id IN (?) OR customer_id = ?", serviceIDs(), provider.UserID).
				Delete(&model.Booking{}).Error
		},
		func() error {
			return db.Where("provider_id = ?", provider.ID).Delete(&model.Service{}).Error
		},
		func() error {
			return db.Where("provider_id = ? OR customer_id = ?", provider.ID, provider.UserID).
				Delete(&model.ServiceRequest{}).Error
		},
		func() error {
			return db.Where("user_id = ?", provider.UserID).Delete(&model.Session{}).Error
		},
		func() error {
			return db.Exec("DELETE FROM provider_categories WHERE service_provider_id = ?", provider.ID).Error
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	res := db.Delete(&model.ServiceProvider{}, "id = ?", provider.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.Delete(&model.User{}, "id = ?", provider.UserID).Error
}
