package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/model"
)

// Ошибки резолва личности.
var (
	ErrNoUser       = errors.New("access: user is required")
	ErrUserInactive = errors.New("access: user is inactive")
)

// Identity описывает, кем пользователь является для веб-слоя (клиент, провайдер или персонал).
// Определяется один раз при входе (Resolve) и дальше восстанавливается из сессии.
type Identity struct {
	Role model.Role
	User *model.User

	// Для RoleProvider: подтверждённая запись провайдера.
	// Для RoleCustomer может содержать ещё не подтверждённую регистрацию.
	Provider *model.ServiceProvider
}

func Customer(u *model.User) Identity {
	return Identity{Role: model.RoleCustomer, User: u}
}

// PendingCustomer: клиент, чья регистрация провайдером ждёт подтверждения.
func PendingCustomer(u *model.User, p *model.ServiceProvider) Identity {
	return Identity{Role: model.RoleCustomer, User: u, Provider: p}
}

func Provider(u *model.User, p *model.ServiceProvider) Identity {
	return Identity{Role: model.RoleProvider, User: u, Provider: p}
}

func Staff(u *model.User) Identity {
	return Identity{Role: model.RoleStaff, User: u}
}

// Anonymous: пустая личность для неаутентифицированных запросов.
func (i Identity) Anonymous() bool { return i.User == nil }

func (i Identity) IsStaff() bool { return i.Role == model.RoleStaff && i.User != nil }

func (i Identity) IsProvider() bool {
	return i.Role == model.RoleProvider && i.User != nil && i.Provider != nil
}

// PendingApproval: есть запись провайдера, но администратор её ещё не подтвердил.
func (i Identity) PendingApproval() bool {
	return i.Role == model.RoleCustomer && i.Provider != nil && !i.Provider.IsApproved
}

// OwnsProvider: может ли личность управлять данными провайдера providerID.
func (i Identity) OwnsProvider(providerID uuid.UUID) bool {
	return i.IsProvider() && i.Provider.ID == providerID
}

// ProviderID: ID провайдера для записи в сессию (nil, если не провайдер).
func (i Identity) ProviderID() *uuid.UUID {
	if !i.IsProvider() {
		return nil
	}
	id := i.Provider.ID
	return &id
}

// ProviderStore: источник записей провайдеров.
// В реале это обёртка над БД, в тестах: фейк.
type ProviderStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ServiceProvider, error)
}

// Resolve определяет вариант личности с приоритетом:
// staff/superuser -> подтверждённый провайдер -> клиент.
func Resolve(ctx context.Context, store ProviderStore, u *model.User) (Identity, error) {
	if u == nil {
		return Identity{}, ErrNoUser
	}
	if !u.IsActive {
		return Identity{}, ErrUserInactive
	}
	if u.IsStaffOrSuperuser() {
		return Staff(u), nil
	}

	p, err := store.FindByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Customer(u), nil
		}
		return Identity{}, err
	}
	if p == nil {
		return Customer(u), nil
	}
	if p.IsApproved {
		return Provider(u, p), nil
	}
	return PendingCustomer(u, p), nil
}
