package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Leganyst/roadmate/internal/access"
)

func TestSessionService_EstablishIdentify_Roles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	towing := f.category(t, "Towing Service")

	ids := map[string]access.Identity{
		"customer": access.Customer(f.customer(t, "alice")),
		"staff":    access.Staff(f.staff(t, "admin")),
		"provider": f.approvedProvider(t, "acme", "Acme Towing", towing),
	}
	for name, id := range ids {
		token, expires, err := f.sessionSvc.Establish(ctx, id)
		if err != nil {
			t.Fatalf("%s: establish: %v", name, err)
		}
		if !expires.After(time.Now()) {
			t.Fatalf("%s: expires = %v, want in the future", name, expires)
		}

		got, err := f.sessionSvc.Identify(ctx, token)
		if err != nil {
			t.Fatalf("%s: identify: %v", name, err)
		}
		if got.Role != id.Role || got.User.ID != id.User.ID {
			t.Fatalf("%s: identify = %s/%s, want %s/%s", name, got.Role, got.User.ID, id.Role, id.User.ID)
		}
		if name == "provider" && !got.OwnsProvider(id.Provider.ID) {
			t.Fatalf("provider session lost provider record")
		}
	}
}

func TestSessionService_Terminate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, _, err := f.sessionSvc.Establish(ctx, access.Customer(f.customer(t, "alice")))
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := f.sessionSvc.Terminate(ctx, token); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if _, err := f.sessionSvc.Identify(ctx, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("after logout: err = %v, want ErrSessionInvalid", err)
	}
	if err := f.sessionSvc.Terminate(ctx, "garbage"); err != nil {
		t.Fatalf("terminate garbage: %v", err)
	}
}

func TestSessionService_RejectsTamperedAndForeignTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, _, err := f.sessionSvc.Establish(ctx, access.Customer(f.customer(t, "alice")))
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := f.sessionSvc.Identify(ctx, tampered); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("tampered: err = %v, want ErrSessionInvalid", err)
	}

	foreign := NewSessionService(f.sessions, f.users, f.providers, "other-secret", time.Hour)
	if _, err := foreign.Identify(ctx, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("foreign secret: err = %v, want ErrSessionInvalid", err)
	}
}

func TestSessionService_ExpiryAndPurge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	f.sessionSvc.now = func() time.Time { return now }

	token, _, err := f.sessionSvc.Establish(ctx, access.Customer(f.customer(t, "alice")))
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := f.sessionSvc.Identify(ctx, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expired: err = %v, want ErrSessionInvalid", err)
	}

	n, err := f.sessionSvc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged = %d, want 1", n)
	}
}

func TestSessionService_RevokedPrivileges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.staff(t, "admin")
	staffToken, _, err := f.sessionSvc.Establish(ctx, access.Staff(admin))
	if err != nil {
		t.Fatalf("establish staff: %v", err)
	}
	admin.IsStaff, admin.IsSuperuser = false, false
	if err := f.users.Save(ctx, admin); err != nil {
		t.Fatalf("demote: %v", err)
	}
	if _, err := f.sessionSvc.Identify(ctx, staffToken); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("demoted staff: err = %v, want ErrSessionInvalid", err)
	}

	alice := f.customer(t, "alice")
	token, _, err := f.sessionSvc.Establish(ctx, access.Customer(alice))
	if err != nil {
		t.Fatalf("establish customer: %v", err)
	}
	if err := f.identity.SetActive(ctx, alice.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.sessionSvc.Identify(ctx, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("inactive user: err = %v, want ErrSessionInvalid", err)
	}

	if _, _, err := f.sessionSvc.Establish(ctx, access.Identity{}); err == nil {
		t.Fatalf("anonymous identity must not get a session")
	}
}
