package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

// DefaultCategories: справочник, который раскатывается при развёртывании.
var DefaultCategories = []model.ServiceCategory{
	{Name: "Towing Service", Description: "Vehicle towing to nearest garage or preferred location", Icon: "fa-truck-pickup"},
	{Name: "Fuel Delivery", Description: "24/7 fuel delivery service to get you back on the road", Icon: "fa-gas-pump"},
	{Name: "Battery Jump Start", Description: "Quick battery jump start service", Icon: "fa-car-battery"},
	{Name: "Tire Change", Description: "Flat tire change with spare tire", Icon: "fa-tire"},
	{Name: "Lockout Service", Description: "Vehicle lockout assistance", Icon: "fa-key"},
	{Name: "On-Site Mechanic", Description: "Mobile mechanic for on-site repairs", Icon: "fa-wrench"},
}

// ProvisioningService выполняет разовые шаги развёртывания: администратор и справочники.
// Вызывается из roadmatectl или один раз при старте сервера, не из обработчиков.
type ProvisioningService struct {
	identity   *IdentityService
	categories repository.CategoryRepository
}

func NewProvisioningService(identity *IdentityService, categories repository.CategoryRepository) *ProvisioningService {
	return &ProvisioningService{identity: identity, categories: categories}
}

// EnsureAdmin создаёт администратора или чинит существующего:
// новый пароль и email, флаги staff, superuser и active.
func (s *ProvisioningService) EnsureAdmin(ctx context.Context, username, email, password string) (*model.User, bool, error) {
	username = strings.TrimSpace(username)
	verr := &ValidationError{}
	validateUsername(verr, username)
	if password == "" {
		verr.Add("password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, false, err
	}

	hash, err := s.identity.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	u, err := s.identity.users.FindByUsername(ctx, username)
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.User{Username: username}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("find admin %q: %w", username, err)
	}

	u.Email = strings.TrimSpace(email)
	u.PasswordHash = hash
	u.IsActive = true
	u.IsStaff = true
	u.IsSuperuser = true

	if created {
		err = s.identity.users.Create(ctx, u)
	} else {
		err = s.identity.users.Save(ctx, u)
	}
	if err != nil {
		return nil, false, fmt.Errorf("save admin %q: %w", username, err)
	}
	return u, created, nil
}

// SeedCategories создаёт недостающие категории по умолчанию. Возвращает число созданных.
func (s *ProvisioningService) SeedCategories(ctx context.Context) (int, error) {
	created := 0
	for _, def := range DefaultCategories {
		c := def
		c.IsActive = true
		ok, err := s.categories.FirstOrCreate(ctx, &c)
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", def.Name, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
