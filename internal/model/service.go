package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// services — конкретное предложение провайдера в рамках категории.
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ProviderID uuid.UUID `gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`

	Title       string  `gorm:"type:varchar(200);not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0"`
	IsAvailable bool    `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Provider *ServiceProvider `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Category *ServiceCategory `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
