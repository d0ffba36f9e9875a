package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sessions — серверная часть cookie-сессии. Роль фиксируется при входе.
type Session struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Role       Role       `gorm:"type:varchar(16);not null"`
	ProviderID *uuid.UUID `gorm:"type:uuid"`

	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
