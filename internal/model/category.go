package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// service_categories — справочник видов помощи (эвакуатор, топливо и т.д.).
type ServiceCategory struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	// CSS-класс иконки, например "fa-truck-pickup".
	Icon     string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
}

func (c *ServiceCategory) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
