package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceProvider — компания, оказывающая услуги на дороге.
// Один к одному с User; без подтверждения администратора войти не может.
type ServiceProvider struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	CompanyName string `gorm:"type:varchar(100);not null"`
	PhoneNumber string `gorm:"type:varchar(20);not null"`
	Address     string `gorm:"type:text"`

	IsApproved bool `gorm:"not null;default:false;index"`
	IsActive   bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	ServiceCategories []ServiceCategory `gorm:"many2many:provider_categories;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *ServiceProvider) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// OffersCategory проверяет, входит ли категория в загруженный список категорий провайдера.
func (p *ServiceProvider) OffersCategory(categoryID uuid.UUID) bool {
	for _, c := range p.ServiceCategories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
