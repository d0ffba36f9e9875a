package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/config"
	"github.com/Leganyst/roadmate/internal/db"
	"github.com/Leganyst/roadmate/internal/model"
)

func newSQLite(t *testing.T) *gorm.DB {
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

// seed описывает минимальный мир: категория, провайдер с листингом и заявкой, клиент с бронированием.
type seed struct {
	category *model.ServiceCategory
	provider *model.ServiceProvider
	customer *model.User
	listing  *model.Service
	request  *model.ServiceRequest
	booking  *model.Booking
}

func seedProvider(t *testing.T, gdb *gorm.DB, company string, approved, active bool, category *model.ServiceCategory) *model.ServiceProvider {
	t.Helper()
	ctx := context.Background()

	u := &model.User{Username: company + "-owner", IsActive: approved}
	if err := NewGormUserRepository(gdb).Create(ctx, u); err != nil {
		t.Fatalf("create provider user: %v", err)
	}
	p := &model.ServiceProvider{
		UserID:            u.ID,
		CompanyName:       company,
		PhoneNumber:       "555-0100",
		IsApproved:        approved,
		IsActive:          active,
		ServiceCategories: []model.ServiceCategory{*category},
	}
	if err := NewGormProviderRepository(gdb).Create(ctx, p); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	return p
}

func seedWorld(t *testing.T, gdb *gorm.DB, company string, category *model.ServiceCategory) seed {
	t.Helper()
	ctx := context.Background()

	s := seed{category: category}
	s.provider = seedProvider(t, gdb, company, true, true, category)

	s.customer = &model.User{Username: company + "-customer", IsActive: true}
	if err := NewGormUserRepository(gdb).Create(ctx, s.customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	s.listing = &model.Service{ProviderID: s.provider.ID, CategoryID: category.ID, Title: "Tow", IsAvailable: true}
	if err := NewGormServiceRepository(gdb).Create(ctx, s.listing); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	s.request = &model.ServiceRequest{
		ProviderID:        s.provider.ID,
		CustomerID:        s.customer.ID,
		ServiceCategoryID: category.ID,
		CustomerName:      "Alice",
		Status:            model.RequestStatusPending,
	}
	if err := NewGormServiceRequestRepository(gdb).Create(ctx, s.request); err != nil {
		t.Fatalf("create request: %v", err)
	}
	s.booking = &model.Booking{
		ServiceID:   s.listing.ID,
		CustomerID:  s.customer.ID,
		BookingDate: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Status:      model.BookingStatusPending,
	}
	if err := NewGormBookingRepository(gdb).Create(ctx, s.booking); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if err := NewGormReviewRepository(gdb).Create(ctx, &model.Review{BookingID: s.booking.ID, Rating: 5}); err != nil {
		t.Fatalf("create review: %v", err)
	}
	return s
}

func newCategory(t *testing.T, gdb *gorm.DB, name string) *model.ServiceCategory {
	t.Helper()
	c := &model.ServiceCategory{Name: name, IsActive: true}
	if _, err := NewGormCategoryRepository(gdb).FirstOrCreate(context.Background(), c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func count(t *testing.T, gdb *gorm.DB, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(m).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestProviderRepository_DeleteWithUser(t *testing.T) {
	gdb := newSQLite(t)
	ctx := context.Background()
	towing := newCategory(t, gdb, "Towing Service")

	victim := seedWorld(t, gdb, "acme", towing)
	other := seedWorld(t, gdb, "zed", towing)

	sessions := NewGormSessionRepository(gdb)
	if err := sessions.Create(ctx, &model.Session{UserID: victim.provider.UserID, Role: model.RoleProvider, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	pid := victim.provider.ID
	if err := NewGormEventRepository(gdb).Create(ctx, &model.Event{EventType: model.EventTypeProviderRegistered, ProviderID: &pid}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	repo := NewGormProviderRepository(gdb)
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return NewGormProviderRepository(tx).DeleteWithUser(ctx, victim.provider)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, victim.provider.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("provider still present: %v", err)
	}
	checks := []struct {
		name  string
		model any
		query string
		args  []any
		want  int64
	}{
		{"owner user", &model.User{}, "id = ?", []any{victim.provider.UserID}, 0},
		{"listings", &model.Service{}, "provider_id = ?", []any{victim.provider.ID}, 0},
		{"requests", &model.ServiceRequest{}, "provider_id = ?", []any{victim.provider.ID}, 0},
		{"bookings", &model.Booking{}, "service_id = ?", []any{victim.listing.ID}, 0},
		{"reviews", &model.Review{}, "booking_id = ?", []any{victim.booking.ID}, 0},
		{"sessions", &model.Session{}, "user_id = ?", []any{victim.provider.UserID}, 0},
		{"events survive", &model.Event{}, "provider_id = ?", []any{victim.provider.ID}, 1},
		{"customer survives", &model.User{}, "id = ?", []any{victim.customer.ID}, 1},
		{"other provider", &model.ServiceProvider{}, "id = ?", []any{other.provider.ID}, 1},
		{"other bookings", &model.Booking{}, "id = ?", []any{other.booking.ID}, 1},
		{"other reviews", &model.Review{}, "booking_id = ?", []any{other.booking.ID}, 1},
	}
	for _, c := range checks {
		if got := count(t, gdb, c.model, c.query, c.args...); got != c.want {
			t.Fatalf("%s: count = %d, want %d", c.name, got, c.want)
		}
	}
	var links int64
	if err := gdb.Table("provider_categories").Where("service_provider_id = ?", victim.provider.ID).Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 0 {
		t.Fatalf("category links left: %d", links)
	}

	if err := repo.DeleteWithUser(ctx, victim.provider); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete: err = %v, want ErrRecordNotFound", err)
	}
}

func TestProviderRepository_ListBookableByCategory(t *testing.T) {
	gdb := newSQLite(t)
	ctx := context.Background()
	towing := newCategory(t, gdb, "Towing Service")
	fuel := newCategory(t, gdb, "Fuel Delivery")

	seedProvider(t, gdb, "Zed Tow", true, true, towing)
	seedProvider(t, gdb, "Acme Towing", true, true, towing)
	seedProvider(t, gdb, "Pending Tow", false, true, towing)
	seedProvider(t, gdb, "Suspended Tow", true, false, towing)
	seedProvider(t, gdb, "Fuel Co", true, true, fuel)

	providers, err := NewGormProviderRepository(gdb).ListBookableByCategory(ctx, towing.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(providers) != 2 || providers[0].CompanyName != "Acme Towing" || providers[1].CompanyName != "Zed Tow" {
		t.Fatalf("providers = %+v", providers)
	}
	if providers[0].User == nil || len(providers[0].ServiceCategories) != 1 {
		t.Fatalf("relations not preloaded")
	}
}

func TestSessionRepository_Expiry(t *testing.T) {
	gdb := newSQLite(t)
	ctx := context.Background()
	repo := NewGormSessionRepository(gdb)

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	live := &model.Session{UserID: uuid.New(), Role: model.RoleCustomer, ExpiresAt: now.Add(time.Hour)}
	stale := &model.Session{UserID: uuid.New(), Role: model.RoleCustomer, ExpiresAt: now.Add(-time.Minute)}
	for _, s := range []*model.Session{live, stale} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	if _, err := repo.GetActive(ctx, live.ID, now); err != nil {
		t.Fatalf("live session: %v", err)
	}
	if _, err := repo.GetActive(ctx, stale.ID, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("stale session: err = %v", err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("delete expired = %d, %v", n, err)
	}
}

func TestSettingRepository_Upsert(t *testing.T) {
	gdb := newSQLite(t)
	ctx := context.Background()
	repo := NewGormSettingRepository(gdb)

	if err := repo.Upsert(ctx, &model.SystemSetting{Key: "banner", Value: "v1", IsActive: true}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Upsert(ctx, &model.SystemSetting{Key: "banner", Value: "v2"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.Get(ctx, "banner")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != "v2" || got.IsActive {
		t.Fatalf("setting = %+v", got)
	}
}
