package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

const (
	adminRecentRequests    = 10
	providerRecentRequests = 10
	providerRecentBookings = 5
)

type AdminStats struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveProviders   int64 `json:"active_providers"`
	PendingProviders  int64 `json:"pending_providers"`
	TotalProviders    int64 `json:"total_providers"`
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	ActiveRequests    int64 `json:"active_requests"`
	CompletedRequests int64 `json:"completed_requests"`
}

type AdminDashboard struct {
	Stats            AdminStats
	PendingProviders []model.ServiceProvider
	Providers        []model.ServiceProvider
	RecentRequests   []model.ServiceRequest
	CurrentDate      time.Time
}

type ProviderStats struct {
	TotalServices     int64  `json:"total_services"`
	ActiveBookings    int64  `json:"active_bookings"`
	ServiceCategories int    `json:"service_categories"`
	CompanyName       string `json:"company_name"`
	PendingRequests   int64  `json:"pending_requests"`
}

type ProviderDashboard struct {
	Provider          *model.ServiceProvider
	Services          []model.Service
	RecentBookings    []model.Booking
	ServiceCategories []model.ServiceCategory
	ServiceRequests   []model.ServiceRequest
	Stats             ProviderStats
}

// DashboardService собирает кабинеты. Ошибки чтения не пробрасываются:
// вместо них нули и пустые списки, причина уходит в лог.
type DashboardService struct {
	users     repository.UserRepository
	providers repository.ProviderRepository
	requests  repository.ServiceRequestRepository
	services  repository.ServiceRepository
	bookings  repository.BookingRepository
	now       func() time.Time
}

func NewDashboardService(
	users repository.UserRepository,
	providers repository.ProviderRepository,
	requests repository.ServiceRequestRepository,
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
) *DashboardService {
	return &DashboardService{
		users:     users,
		providers: providers,
		requests:  requests,
		services:  services,
		bookings:  bookings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Admin собирает всё или ничего, при любой ошибке кабинет пустой.
func (s *DashboardService) Admin(ctx context.Context) *AdminDashboard {
	now := s.now()
	d, err := s.admin(ctx)
	if err != nil {
		log.Printf("admin dashboard: %v", err)
		return &AdminDashboard{CurrentDate: truncateDay(now)}
	}
	d.CurrentDate = truncateDay(now)
	return d
}

func (s *DashboardService) admin(ctx context.Context) (*AdminDashboard, error) {
	yes, no := true, false
	d := &AdminDashboard{}

	var err error
	if d.PendingProviders, err = s.providers.List(ctx, repository.ProviderFilter{Approved: &no}); err != nil {
		return nil, fmt.Errorf("pending providers: %w", err)
	}
	if d.Providers, err = s.providers.List(ctx, repository.ProviderFilter{Approved: &yes}); err != nil {
		return nil, fmt.Errorf("approved providers: %w", err)
	}
	if d.RecentRequests, err = s.requests.ListRecent(ctx, adminRecentRequests); err != nil {
		return nil, fmt.Errorf("recent requests: %w", err)
	}

	counters := []struct {
		name string
		dst  *int64
		fn   func() (int64, error)
	}{
		{"total users", &d.Stats.TotalUsers, func() (int64, error) { return s.users.CountNonStaff(ctx) }},
		{"active providers", &d.Stats.ActiveProviders, func() (int64, error) {
			return s.providers.Count(ctx, repository.ProviderFilter{Approved: &yes, Active: &yes})
		}},
		{"pending providers", &d.Stats.PendingProviders, func() (int64, error) {
			return s.providers.Count(ctx, repository.ProviderFilter{Approved: &no})
		}},
		{"total providers", &d.Stats.TotalProviders, func() (int64, error) {
			return s.providers.Count(ctx, repository.ProviderFilter{})
		}},
		{"total requests", &d.Stats.TotalRequests, func() (int64, error) { return s.requests.Count(ctx) }},
		{"pending requests", &d.Stats.PendingRequests, func() (int64, error) {
			return s.requests.Count(ctx, model.RequestStatusPending)
		}},
		{"active requests", &d.Stats.ActiveRequests, func() (int64, error) {
			return s.requests.Count(ctx, model.ActiveRequestStatuses...)
		}},
		{"completed requests", &d.Stats.CompletedRequests, func() (int64, error) {
			return s.requests.Count(ctx, model.RequestStatusCompleted)
		}},
	}
	for _, c := range counters {
		n, err := c.fn()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = n
	}
	return d, nil
}

// Provider: каждый раздел кабинета деградирует отдельно.
func (s *DashboardService) Provider(ctx context.Context, actor access.Identity) (*ProviderDashboard, error) {
	if !actor.IsProvider() {
		return nil, ErrPermissionDenied
	}
	p := actor.Provider

	d := &ProviderDashboard{
		Provider:          p,
		ServiceCategories: p.ServiceCategories,
		Stats: ProviderStats{
			CompanyName:       p.CompanyName,
			ServiceCategories: len(p.ServiceCategories),
		},
	}

	if services, total, err := s.services.ListByProvider(ctx, p.ID); err != nil {
		log.Printf("provider dashboard %s: services: %v", p.ID, err)
	} else {
		d.Services = services
		d.Stats.TotalServices = total
	}

	if bookings, err := s.bookings.ListRecentByProvider(ctx, p.ID, providerRecentBookings); err != nil {
		log.Printf("provider dashboard %s: recent bookings: %v", p.ID, err)
	} else {
		d.RecentBookings = bookings
	}
	if n, err := s.bookings.CountByProvider(ctx, p.ID, model.ActiveBookingStatuses...); err != nil {
		log.Printf("provider dashboard %s: active bookings: %v", p.ID, err)
	} else {
		d.Stats.ActiveBookings = n
	}

	// Счётчик считается по всей таблице, а не по обрезанному списку ниже.
	if n, err := s.requests.CountByProvider(ctx, p.ID, model.RequestStatusPending); err != nil {
		log.Printf("provider dashboard %s: pending requests: %v", p.ID, err)
	} else {
		d.Stats.PendingRequests = n
	}
	if requests, err := s.requests.ListByProvider(ctx, p.ID, providerRecentRequests); err != nil {
		log.Printf("provider dashboard %s: service requests: %v", p.ID, err)
	} else {
		d.ServiceRequests = requests
	}

	return d, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
