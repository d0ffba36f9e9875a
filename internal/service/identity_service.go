package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 150
)

// IdentityService хранит учётные записи: создание, аутентификация, профиль.
type IdentityService struct {
	users     repository.UserRepository
	providers repository.ProviderRepository
	hashCost  int
	now       func() time.Time
}

// NewIdentityService: hashCost <= 0 означает bcrypt.DefaultCost.
func NewIdentityService(
	users repository.UserRepository,
	providers repository.ProviderRepository,
	hashCost int,
) *IdentityService {
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &IdentityService{
		users:     users,
		providers: providers,
		hashCost:  hashCost,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *IdentityService) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *IdentityService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user %s", id)
	}
	return u, nil
}

func (s *IdentityService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return u, nil
}

// Create заводит пользователя без проверок формы (их делают Signup и регистрация провайдера).
func (s *IdentityService) Create(ctx context.Context, username, email, password string, active bool) (*model.User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsActive:     active,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return u, nil
}

// Authenticate проверяет только пароль. Флаг is_active проверяют вызывающие,
// потому что сообщение об отказе зависит от сценария входа.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, formError(ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, formError(ErrInvalidCredentials)
	}
	return u, nil
}

func (s *IdentityService) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return notFound(err, "set active for user %s", userID)
	}
	return nil
}

// Login: обычная форма входа (клиенты и персонал).
func (s *IdentityService) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		p, perr := s.providers.FindByUserID(ctx, u.ID)
		if perr == nil && !p.IsApproved {
			return nil, formError(ErrPendingApproval)
		}
		return nil, formError(ErrAccountInactive)
	}
	s.touchLogin(ctx, u)
	return u, nil
}

// Resolve определяет роль пользователя для новой сессии.
func (s *IdentityService) Resolve(ctx context.Context, u *model.User) (access.Identity, error) {
	return access.Resolve(ctx, s.providers, u)
}

func (s *IdentityService) touchLogin(ctx context.Context, u *model.User) {
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		log.Printf("touch last login %s: %v", u.ID, err)
		return
	}
	u.LastLoginAt = &now
}

type SignupInput struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

// Signup регистрирует активного клиента.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	verr := &ValidationError{}
	validateUsername(verr, in.Username)
	if in.Email != "" {
		validateEmail(verr, in.Email)
	}
	validatePasswords(verr, in.Password1, in.Password2)

	if !verr.Has("username") {
		taken, err := s.users.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("signup: check username: %w", err)
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.Create(ctx, in.Username, in.Email, in.Password1, true)
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(in.Email)
	verr := &ValidationError{}
	if in.Email != "" {
		validateEmail(verr, in.Email)
	}
	if len(in.FirstName) > 150 {
		verr.Add("first_name", "Ensure this value has at most 150 characters.")
	}
	if len(in.LastName) > 150 {
		verr.Add("last_name", "Ensure this value has at most 150 characters.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	if in.Email != "" {
		u.Email = in.Email
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile %s: %w", userID, err)
	}
	return u, nil
}

func validateUsername(verr *ValidationError, username string) {
	if username == "" {
		verr.Add("username", "This field is required.")
		return
	}
	if len(username) > maxUsernameLength {
		verr.Add("username", "Ensure this value has at most 150 characters.")
		return
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		return
	}
}

func validateEmail(verr *ValidationError, email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.Add("email", "Enter a valid email address.")
	}
}

func validatePasswords(verr *ValidationError, password1, password2 string) {
	if password1 == "" {
		verr.Add("password1", "This field is required.")
	}
	if password2 == "" {
		verr.Add("password2", "This field is required.")
	}
	if password1 == "" || password2 == "" {
		return
	}
	if password1 != password2 {
		verr.Add("password2", "Passwords don't match")
		return
	}
	if len(password1) < minPasswordLength {
		verr.Add("password2", "This password is too short. It must contain at least 8 characters.")
	}
	if isNumeric(password1) {
		verr.Add("password2", "This password is entirely numeric.")
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
