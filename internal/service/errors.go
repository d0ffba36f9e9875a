package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// Причины отказа во входе. Приходят завёрнутыми в *ValidationError.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotProvider        = errors.New("account is not a service provider")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrPendingApproval    = errors.New("provider is pending approval")
)

var formMessages = map[error]string{
	ErrInvalidCredentials: "Invalid username or password.",
	ErrNotProvider:        "This account is not registered as a service provider.",
	ErrAccountInactive:    "Your account is inactive. Please contact the administrator.",
	ErrPendingApproval:    "Your account is pending approval from the administrator.",
}

// FieldError: сообщение, привязанное к полю формы. Пустое Field означает ошибка формы целиком.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError: плохой ввод. Никогда не фатальна, показывается пользователю.
type ValidationError struct {
	Errors []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Has сообщает, есть ли ошибка по полю.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// OrNil возвращает nil, если ошибок не накопилось.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Fields группирует сообщения по полям для повторного показа формы.
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// formError: ошибка формы целиком с машиночитаемой причиной.
func formError(cause error) *ValidationError {
	msg, ok := formMessages[cause]
	if !ok {
		msg = cause.Error()
	}
	return &ValidationError{
		Errors: []FieldError{{Message: msg}},
		cause:  cause,
	}
}

// notFound переводит gorm.ErrRecordNotFound в ErrNotFound, остальное заворачивает.
func notFound(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
