package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Leganyst/roadmate/internal/model"
)

func TestProvisioningService_EnsureAdmin_CreateThenFix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, created, err := f.provisioning.EnsureAdmin(ctx, "admin", "admin@roadmate.com", "first-pass")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !created || !u.IsStaff || !u.IsSuperuser || !u.IsActive {
		t.Fatalf("created=%t user=%+v", created, u)
	}

	// сломанный администратор: снят флаг и забыт пароль
	if err := f.identity.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	fixed, created, err := f.provisioning.EnsureAdmin(ctx, "admin", "ops@roadmate.com", "second-pass")
	if err != nil {
		t.Fatalf("fix admin: %v", err)
	}
	if created || fixed.ID != u.ID || fixed.Email != "ops@roadmate.com" {
		t.Fatalf("fix: created=%t id=%s email=%s", created, fixed.ID, fixed.Email)
	}
	if _, err := f.identity.Login(ctx, "admin", "second-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if n := f.count(t, &model.User{}, "is_staff = ?", true); n != 1 {
		t.Fatalf("staff users = %d, want 1", n)
	}

	if _, _, err := f.provisioning.EnsureAdmin(ctx, "admin", "", ""); !fieldsOfHas(err, "password") {
		t.Fatalf("empty password: err = %v", err)
	}
}

func TestProvisioningService_SeedCategories_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.provisioning.SeedCategories(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(DefaultCategories) {
		t.Fatalf("created = %d, want %d", n, len(DefaultCategories))
	}

	n, err = f.provisioning.SeedCategories(ctx)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run created %d", n)
	}

	active, err := f.catalog.ActiveCategories(ctx)
	if err != nil {
		t.Fatalf("active categories: %v", err)
	}
	if len(active) != len(DefaultCategories) {
		t.Fatalf("active = %d", len(active))
	}
	for _, slug := range []string{"towing", "fuel-delivery", "mechanic", "battery", "tire", "lockout"} {
		if _, err := f.catalog.CategoryPage(ctx, slug); err != nil {
			t.Fatalf("page %s: %v", slug, err)
		}
	}
}

func TestSettingsService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.settingsSvc.Set(ctx, "maintenance", "Down at 2am", "banner"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := f.settingsSvc.Set(ctx, "hotline", "555-0199", ""); err != nil {
		t.Fatalf("set hotline: %v", err)
	}
	if _, err := f.settingsSvc.Set(ctx, "maintenance", "Down at 3am", "banner"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := f.settingsSvc.Get(ctx, "maintenance")
	if err != nil || got.Value != "Down at 3am" {
		t.Fatalf("get = %v, %v", got, err)
	}

	if err := f.settingsSvc.Deactivate(ctx, "hotline"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	notices, err := f.settingsSvc.ActiveNotices(ctx)
	if err != nil {
		t.Fatalf("notices: %v", err)
	}
	if len(notices) != 1 || notices[0].Key != "maintenance" {
		t.Fatalf("notices = %v", notices)
	}

	if _, err := f.settingsSvc.Set(ctx, "  ", "x", ""); !fieldsOfHas(err, "key") {
		t.Fatalf("blank key: err = %v", err)
	}
	if err := f.settingsSvc.Deactivate(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: err = %v, want ErrNotFound", err)
	}
}
