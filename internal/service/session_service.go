package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

// ErrSessionInvalid: токен не прошёл проверку, сессия истекла или удалена.
var ErrSessionInvalid = errors.New("session invalid")

type sessionClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionService отвечает за cookie-сессии: подписанный JWT ссылается на строку в таблице sessions,
// поэтому выход и удаление пользователя сразу отзывают токен.
type SessionService struct {
	sessions  repository.SessionRepository
	users     repository.UserRepository
	providers repository.ProviderRepository

	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	providers repository.ProviderRepository,
	secret string,
	ttl time.Duration,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		users:     users,
		providers: providers,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

// Establish сохраняет уже определённую личность и возвращает подписанный токен.
func (s *SessionService) Establish(ctx context.Context, id access.Identity) (string, time.Time, error) {
	if id.Anonymous() {
		return "", time.Time{}, access.ErrNoUser
	}

	now := s.now()
	sess := &model.Session{
		UserID:    id.User.ID,
		Role:      id.Role,
		ExpiresAt: now.Add(s.ttl),
	}
	if id.Provider != nil {
		pid := id.Provider.ID
		sess.ProviderID = &pid
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}

	claims := sessionClaims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID.String(),
			Subject:   id.User.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, sess.ExpiresAt, nil
}

func (s *SessionService) parse(token string, opts ...jwt.ParserOption) (*sessionClaims, uuid.UUID, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, uuid.Nil, ErrSessionInvalid
	}
	sid, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, uuid.Nil, ErrSessionInvalid
	}
	return claims, sid, nil
}

// Identify восстанавливает личность по токену из cookie.
func (s *SessionService) Identify(ctx context.Context, token string) (access.Identity, error) {
	claims, sid, err := s.parse(token)
	if err != nil {
		return access.Identity{}, err
	}

	sess, err := s.sessions.GetActive(ctx, sid, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Identity{}, ErrSessionInvalid
		}
		return access.Identity{}, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID.String() != claims.Subject || sess.Role != claims.Role {
		return access.Identity{}, ErrSessionInvalid
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Identity{}, ErrSessionInvalid
		}
		return access.Identity{}, fmt.Errorf("load session user: %w", err)
	}
	if !u.IsActive {
		return access.Identity{}, ErrSessionInvalid
	}

	switch sess.Role {
	case model.RoleStaff:
		if !u.IsStaffOrSuperuser() {
			return access.Identity{}, ErrSessionInvalid
		}
		return access.Staff(u), nil
	case model.RoleProvider, model.RoleCustomer:
		if sess.ProviderID == nil {
			if sess.Role == model.RoleProvider {
				return access.Identity{}, ErrSessionInvalid
			}
			return access.Customer(u), nil
		}
		p, err := s.providers.GetByID(ctx, *sess.ProviderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.Identity{}, ErrSessionInvalid
			}
			return access.Identity{}, fmt.Errorf("load session provider: %w", err)
		}
		if sess.Role == model.RoleProvider && p.IsApproved {
			return access.Provider(u, p), nil
		}
		return access.PendingCustomer(u, p), nil
	default:
		return access.Identity{}, ErrSessionInvalid
	}
}

// Terminate удаляет серверную сессию. Просроченный токен тоже можно завершить.
func (s *SessionService) Terminate(ctx context.Context, token string) error {
	_, sid, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("delete session %s: %w", sid, err)
	}
	return nil
}

func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
