package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users — учётные записи (клиенты, провайдеры, персонал).
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(254);index"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string `gorm:"type:varchar(150)"`
	LastName     string `gorm:"type:varchar(150)"`

	IsActive    bool `gorm:"not null"`
	IsStaff     bool `gorm:"not null;default:false"`
	IsSuperuser bool `gorm:"not null;default:false"`

	LastLoginAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Навигация: у клиента провайдера нет.
	ServiceProvider *ServiceProvider `gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName возвращает "Имя Фамилия" или пустую строку.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName — полное имя, а если его нет, то username.
func (u *User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Username
}

// IsStaffOrSuperuser — доступ к админ-панели.
func (u *User) IsStaffOrSuperuser() bool {
	return u.IsStaff || u.IsSuperuser
}
