package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

// ProviderService: регистрация провайдеров и решение администратора по ним.
// Пары User+ServiceProvider создаются и удаляются только в одной транзакции.
type ProviderService struct {
	db         *gorm.DB
	identity   *IdentityService
	providers  repository.ProviderRepository
	categories repository.CategoryRepository
	events     repository.EventRepository
}

func NewProviderService(
	db *gorm.DB,
	identity *IdentityService,
	providers repository.ProviderRepository,
	categories repository.CategoryRepository,
	events repository.EventRepository,
) *ProviderService {
	return &ProviderService{
		db:         db,
		identity:   identity,
		providers:  providers,
		categories: categories,
		events:     events,
	}
}

type RegistrationInput struct {
	Username  string
	Email     string
	Password1 string
	Password2 string

	CompanyName string
	PhoneNumber string
	Address     string
	CategoryIDs []string
}

// Register создаёт неактивного пользователя и неподтверждённого провайдера.
// Войти он сможет только после Approve.
func (s *ProviderService) Register(ctx context.Context, in RegistrationInput) (*model.ServiceProvider, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Address = strings.TrimSpace(in.Address)

	verr := &ValidationError{}
	validateUsername(verr, in.Username)
	if in.Email == "" {
		verr.Add("email", "This field is required.")
	} else {
		validateEmail(verr, in.Email)
	}
	validatePasswords(verr, in.Password1, in.Password2)

	switch {
	case in.CompanyName == "":
		verr.Add("company_name", "This field is required.")
	case len(in.CompanyName) > 100:
		verr.Add("company_name", "Ensure this value has at most 100 characters.")
	}
	switch {
	case in.PhoneNumber == "":
		verr.Add("phone_number", "This field is required.")
	case len(in.PhoneNumber) > 20:
		verr.Add("phone_number", "Ensure this value has at most 20 characters.")
	}

	categories, err := s.selectedCategories(ctx, verr, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	if !verr.Has("username") {
		taken, err := s.identity.users.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("register provider: check username: %w", err)
		}
		if taken {
			verr.Add("username", "This username is already taken.")
		}
	}
	if !verr.Has("email") {
		taken, err := s.identity.users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("register provider: check email: %w", err)
		}
		if taken {
			verr.Add("email", "This email is already registered.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.identity.HashPassword(in.Password1)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     false,
	}
	provider := &model.ServiceProvider{
		CompanyName:       in.CompanyName,
		PhoneNumber:       in.PhoneNumber,
		Address:           in.Address,
		IsApproved:        false,
		IsActive:          true,
		ServiceCategories: categories,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormUserRepository(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("create user %q: %w", user.Username, err)
		}
		provider.UserID = user.ID
		if err := repository.NewGormProviderRepository(tx).Create(ctx, provider); err != nil {
			return fmt.Errorf("create provider %q: %w", provider.CompanyName, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register provider: %w", err)
	}
	provider.User = user

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	recordEvent(ctx, s.events, &model.Event{
		EventType:  model.EventTypeProviderRegistered,
		UserID:     &user.ID,
		ProviderID: &provider.ID,
		Details: datatypes.JSONMap{
			"company":    provider.CompanyName,
			"categories": names,
		},
	})

	return provider, nil
}

// selectedCategories проверяет выбор категорий: хотя бы одна, все существуют и активны.
func (s *ProviderService) selectedCategories(ctx context.Context, verr *ValidationError, raw []string) ([]model.ServiceCategory, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		id, err := uuid.Parse(r)
		if err != nil {
			verr.Add("service_categories", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", r))
			return nil, nil
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		verr.Add("service_categories", "This field is required.")
		return nil, nil
	}

	categories, err := s.categories.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) != len(ids) {
		verr.Add("service_categories", "Select a valid choice. One of the selected categories is not available.")
		return nil, nil
	}
	return categories, nil
}

// Approve подтверждает провайдера и активирует его пользователя.
func (s *ProviderService) Approve(ctx context.Context, providerID string) (*model.ServiceProvider, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", providerID, ErrNotFound)
	}

	var provider *model.ServiceProvider
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		providers := repository.NewGormProviderRepository(tx)
		p, err := providers.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "provider %s", id)
		}
		if err := providers.SetApproved(ctx, p.ID, true); err != nil {
			return notFound(err, "approve provider %s", p.ID)
		}
		if err := repository.NewGormUserRepository(tx).SetActive(ctx, p.UserID, true); err != nil {
			return notFound(err, "activate user %s", p.UserID)
		}
		provider = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	provider.IsApproved = true
	if provider.User != nil {
		provider.User.IsActive = true
	}

	recordEvent(ctx, s.events, &model.Event{
		EventType:  model.EventTypeProviderApproved,
		UserID:     &provider.UserID,
		ProviderID: &provider.ID,
		Details:    datatypes.JSONMap{"company": provider.CompanyName},
	})
	return provider, nil
}

// ApproveByUsername: то же, что Approve, но по логину владельца (для CLI).
func (s *ProviderService) ApproveByUsername(ctx context.Context, username string) (*model.ServiceProvider, error) {
	p, err := s.providers.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, notFound(err, "provider of user %q", username)
	}
	return s.Approve(ctx, p.ID.String())
}

// Reject удаляет провайдера вместе с пользователем одной транзакцией.
func (s *ProviderService) Reject(ctx context.Context, providerID string) error {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return fmt.Errorf("provider %q: %w", providerID, ErrNotFound)
	}

	var rejected *model.ServiceProvider
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		providers := repository.NewGormProviderRepository(tx)
		p, err := providers.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "provider %s", id)
		}
		if err := providers.DeleteWithUser(ctx, p); err != nil {
			return notFound(err, "delete provider %s", p.ID)
		}
		rejected = p
		return nil
	})
	if err != nil {
		return err
	}

	details := datatypes.JSONMap{"company": rejected.CompanyName}
	if rejected.User != nil {
		details["username"] = rejected.User.Username
	}
	recordEvent(ctx, s.events, &model.Event{
		EventType:  model.EventTypeProviderRejected,
		ProviderID: &rejected.ID,
		Details:    details,
	})
	return nil
}

// Login обрабатывает форму входа провайдера. Порядок проверок: пароль, есть ли провайдер,
// подтверждён ли он, активен ли пользователь.
func (s *ProviderService) Login(ctx context.Context, username, password string) (access.Identity, error) {
	u, err := s.identity.Authenticate(ctx, username, password)
	if err != nil {
		return access.Identity{}, err
	}

	p, err := s.providers.FindByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Identity{}, formError(ErrNotProvider)
		}
		return access.Identity{}, fmt.Errorf("provider login %q: %w", u.Username, err)
	}
	if !p.IsApproved {
		return access.Identity{}, formError(ErrPendingApproval)
	}
	if !u.IsActive || !p.IsActive {
		return access.Identity{}, formError(ErrAccountInactive)
	}

	s.identity.touchLogin(ctx, u)
	return access.Provider(u, p), nil
}

// Pending: провайдеры, ждущие решения администратора, новые сверху.
func (s *ProviderService) Pending(ctx context.Context) ([]model.ServiceProvider, error) {
	approved := false
	providers, err := s.providers.List(ctx, repository.ProviderFilter{Approved: &approved})
	if err != nil {
		return nil, fmt.Errorf("list pending providers: %w", err)
	}
	return providers, nil
}
