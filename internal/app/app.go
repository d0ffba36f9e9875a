package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/handler"
	"github.com/Leganyst/roadmate/internal/repository"
	"github.com/Leganyst/roadmate/internal/service"
)

// Settings: то, что сервисам нужно из конфигурации.
type Settings struct {
	SessionSecret    string
	SessionTTL       time.Duration
	PasswordHashCost int
}

// App: собранные репозитории и сервисы поверх одного *gorm.DB.
type App struct {
	DB *gorm.DB

	Identity     *service.IdentityService
	Providers    *service.ProviderService
	Requests     *service.RequestService
	Sessions     *service.SessionService
	Catalog      *service.CatalogService
	Dashboards   *service.DashboardService
	Bookings     *service.BookingService
	Settings     *service.SettingsService
	Provisioning *service.ProvisioningService
}

func New(db *gorm.DB, s Settings) *App {
	// Репозитории (реализации на GORM).
	userRepo := repository.NewGormUserRepository(db)
	providerRepo := repository.NewGormProviderRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	requestRepo := repository.NewGormServiceRequestRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	settingRepo := repository.NewGormSettingRepository(db)
	eventRepo := repository.NewGormEventRepository(db)

	identity := service.NewIdentityService(userRepo, providerRepo, s.PasswordHashCost)

	return &App{
		DB:           db,
		Identity:     identity,
		Providers:    service.NewProviderService(db, identity, providerRepo, categoryRepo, eventRepo),
		Requests:     service.NewRequestService(requestRepo, providerRepo, categoryRepo, eventRepo),
		Sessions:     service.NewSessionService(sessionRepo, userRepo, providerRepo, s.SessionSecret, s.SessionTTL),
		Catalog:      service.NewCatalogService(categoryRepo, providerRepo, serviceRepo),
		Dashboards:   service.NewDashboardService(userRepo, providerRepo, requestRepo, serviceRepo, bookingRepo),
		Bookings:     service.NewBookingService(bookingRepo, reviewRepo, serviceRepo),
		Settings:     service.NewSettingsService(settingRepo),
		Provisioning: service.NewProvisioningService(identity, categoryRepo),
	}
}

// HandlerServices: срез App для веб-слоя.
func (a *App) HandlerServices() handler.Services {
	return handler.Services{
		Identity:   a.Identity,
		Providers:  a.Providers,
		Requests:   a.Requests,
		Sessions:   a.Sessions,
		Catalog:    a.Catalog,
		Dashboards: a.Dashboards,
		Bookings:   a.Bookings,
		Settings:   a.Settings,
	}
}
