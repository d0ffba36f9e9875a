package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

type fakeStore struct {
	byUser map[uuid.UUID]*model.ServiceProvider
	err    error
}

func (s fakeStore) FindByUserID(_ context.Context, userID uuid.UUID) (*model.ServiceProvider, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func newUser(staff, superuser, active bool) *model.User {
	return &model.User{ID: uuid.New(), Username: "u", IsStaff: staff, IsSuperuser: superuser, IsActive: active}
}

func TestResolve_Precedence(t *testing.T) {
	staff := newUser(true, false, true)
	super := newUser(false, true, true)
	approved := newUser(false, false, true)
	pending := newUser(false, false, true)
	staffWithProvider := newUser(true, false, true)
	customer := newUser(false, false, true)

	store := fakeStore{byUser: map[uuid.UUID]*model.ServiceProvider{
		approved.ID:          {ID: uuid.New(), UserID: approved.ID, IsApproved: true},
		pending.ID:           {ID: uuid.New(), UserID: pending.ID},
		staffWithProvider.ID: {ID: uuid.New(), UserID: staffWithProvider.ID, IsApproved: true},
	}}

	cases := []struct {
		name    string
		user    *model.User
		role    model.Role
		pending bool
	}{
		{"staff", staff, model.RoleStaff, false},
		{"superuser", super, model.RoleStaff, false},
		{"staff wins over provider record", staffWithProvider, model.RoleStaff, false},
		{"approved provider", approved, model.RoleProvider, false},
		{"pending provider", pending, model.RoleCustomer, true},
		{"customer", customer, model.RoleCustomer, false},
	}
	for _, tc := range cases {
		id, err := Resolve(context.Background(), store, tc.user)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if id.Role != tc.role {
			t.Fatalf("%s: role = %s, want %s", tc.name, id.Role, tc.role)
		}
		if id.PendingApproval() != tc.pending {
			t.Fatalf("%s: pending = %t, want %t", tc.name, id.PendingApproval(), tc.pending)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	store := fakeStore{}
	if _, err := Resolve(context.Background(), store, nil); !errors.Is(err, ErrNoUser) {
		t.Fatalf("nil user: err = %v", err)
	}
	if _, err := Resolve(context.Background(), store, newUser(true, true, false)); !errors.Is(err, ErrUserInactive) {
		t.Fatalf("inactive: err = %v", err)
	}

	boom := errors.New("db down")
	if _, err := Resolve(context.Background(), fakeStore{err: boom}, newUser(false, false, true)); !errors.Is(err, boom) {
		t.Fatalf("store error: err = %v, want %v", err, boom)
	}
}

func TestIdentity_OwnsProvider(t *testing.T) {
	u := newUser(false, false, true)
	p := &model.ServiceProvider{ID: uuid.New(), UserID: u.ID, IsApproved: true}

	if !Provider(u, p).OwnsProvider(p.ID) {
		t.Fatalf("provider must own its record")
	}
	if Provider(u, p).OwnsProvider(uuid.New()) {
		t.Fatalf("provider must not own a foreign record")
	}
	if PendingCustomer(u, p).OwnsProvider(p.ID) {
		t.Fatalf("pending customer must not manage provider data")
	}
	if Customer(u).ProviderID() != nil || *Provider(u, p).ProviderID() != p.ID {
		t.Fatalf("unexpected ProviderID")
	}
}
