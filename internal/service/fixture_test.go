package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/config"
	"github.com/Leganyst/roadmate/internal/db"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

const testPassword = "s3cret-pass"

// fixture: все сервисы поверх sqlite в памяти.
type fixture struct {
	db *gorm.DB

	users      *repository.GormUserRepository
	providers  *repository.GormProviderRepository
	categories *repository.GormCategoryRepository
	services   *repository.GormServiceRepository
	requests   *repository.GormServiceRequestRepository
	bookings   *repository.GormBookingRepository
	reviews    *repository.GormReviewRepository
	sessions   *repository.GormSessionRepository
	settings   *repository.GormSettingRepository
	events     *repository.GormEventRepository

	identity     *IdentityService
	providerSvc  *ProviderService
	requestSvc   *RequestService
	sessionSvc   *SessionService
	catalog      *CatalogService
	dashboards   *DashboardService
	bookingSvc   *BookingService
	settingsSvc  *SettingsService
	provisioning *ProvisioningService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := newTestDB(t)
	f := &fixture{
		db:         gdb,
		users:      repository.NewGormUserRepository(gdb),
		providers:  repository.NewGormProviderRepository(gdb),
		categories: repository.NewGormCategoryRepository(gdb),
		services:   repository.NewGormServiceRepository(gdb),
		requests:   repository.NewGormServiceRequestRepository(gdb),
		bookings:   repository.NewGormBookingRepository(gdb),
		reviews:    repository.NewGormReviewRepository(gdb),
		sessions:   repository.NewGormSessionRepository(gdb),
		settings:   repository.NewGormSettingRepository(gdb),
		events:     repository.NewGormEventRepository(gdb),
	}

	f.identity = NewIdentityService(f.users, f.providers, bcrypt.MinCost)
	f.providerSvc = NewProviderService(gdb, f.identity, f.providers, f.categories, f.events)
	f.requestSvc = NewRequestService(f.requests, f.providers, f.categories, f.events)
	f.sessionSvc = NewSessionService(f.sessions, f.users, f.providers, "test-secret", time.Hour)
	f.catalog = NewCatalogService(f.categories, f.providers, f.services)
	f.dashboards = NewDashboardService(f.users, f.providers, f.requests, f.services, f.bookings)
	f.bookingSvc = NewBookingService(f.bookings, f.reviews, f.services)
	f.settingsSvc = NewSettingsService(f.settings)
	f.provisioning = NewProvisioningService(f.identity, f.categories)
	return f
}

func (f *fixture) category(t *testing.T, name string) *model.ServiceCategory {
	t.Helper()
	c := &model.ServiceCategory{Name: name, Description: name + " help", IsActive: true}
	if _, err := f.categories.FirstOrCreate(context.Background(), c); err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func (f *fixture) customer(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := f.identity.Create(context.Background(), username, username+"@example.com", testPassword, true)
	if err != nil {
		t.Fatalf("create customer %q: %v", username, err)
	}
	return u
}

func (f *fixture) staff(t *testing.T, username string) *model.User {
	t.Helper()
	u, _, err := f.provisioning.EnsureAdmin(context.Background(), username, username+"@example.com", testPassword)
	if err != nil {
		t.Fatalf("create staff %q: %v", username, err)
	}
	return u
}

func (f *fixture) register(t *testing.T, username, company string, categories ...*model.ServiceCategory) *model.ServiceProvider {
	t.Helper()
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID.String())
	}
	p, err := f.providerSvc.Register(context.Background(), RegistrationInput{
		Username:    username,
		Email:       username + "@example.com",
		Password1:   testPassword,
		Password2:   testPassword,
		CompanyName: company,
		PhoneNumber: "555-0100",
		Address:     "1 Main St",
		CategoryIDs: ids,
	})
	if err != nil {
		t.Fatalf("register provider %q: %v", username, err)
	}
	return p
}

// approvedProvider регистрирует, подтверждает и логинит провайдера.
func (f *fixture) approvedProvider(t *testing.T, username, company string, categories ...*model.ServiceCategory) access.Identity {
	t.Helper()
	p := f.register(t, username, company, categories...)
	if _, err := f.providerSvc.Approve(context.Background(), p.ID.String()); err != nil {
		t.Fatalf("approve %q: %v", company, err)
	}
	id, err := f.providerSvc.Login(context.Background(), username, testPassword)
	if err != nil {
		t.Fatalf("provider login %q: %v", username, err)
	}
	return id
}

func (f *fixture) count(t *testing.T, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// formMessage достаёт текст ошибки формы целиком.
func formMessage(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	msgs := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, " ")
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Fields()
}
