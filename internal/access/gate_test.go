package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/roadmate/internal/model"
)

func TestLandingPath(t *testing.T) {
	u := newUser(false, false, true)
	p := &model.ServiceProvider{ID: uuid.New(), IsApproved: true}

	cases := []struct {
		id   Identity
		want string
	}{
		{Identity{}, PathHome},
		{Customer(u), PathHome},
		{PendingCustomer(u, &model.ServiceProvider{ID: uuid.New()}), PathHome},
		{Provider(u, p), PathProviderDashboard},
		{Staff(newUser(true, false, true)), PathAdminDashboard},
	}
	for _, tc := range cases {
		if got := LandingPath(tc.id); got != tc.want {
			t.Fatalf("LandingPath(%s) = %q, want %q", tc.id.Role, got, tc.want)
		}
	}
}

func TestGates(t *testing.T) {
	u := newUser(false, false, true)
	provider := Provider(u, &model.ServiceProvider{ID: uuid.New(), IsApproved: true})
	pending := PendingCustomer(u, &model.ServiceProvider{ID: uuid.New()})
	staff := Staff(newUser(true, true, true))

	cases := []struct {
		name     string
		id       Identity
		admin    error
		provider error
	}{
		{"anonymous", Identity{}, ErrLoginRequired, ErrLoginRequired},
		{"customer", Customer(u), ErrStaffOnly, ErrNotProvider},
		{"pending", pending, ErrStaffOnly, ErrPendingApproval},
		{"provider", provider, ErrStaffOnly, nil},
		{"staff", staff, nil, ErrNotProvider},
	}
	for _, tc := range cases {
		if err := CheckAdminDashboard(tc.id); !errors.Is(err, tc.admin) {
			t.Fatalf("%s: admin gate = %v, want %v", tc.name, err, tc.admin)
		}
		if err := CheckProviderDashboard(tc.id); !errors.Is(err, tc.provider) {
			t.Fatalf("%s: provider gate = %v, want %v", tc.name, err, tc.provider)
		}
	}
}
