package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// Terminal — completed и cancelled больше не меняются.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// ActiveRequestStatuses — заявки, которые провайдер уже взял в работу.
var ActiveRequestStatuses = []RequestStatus{RequestStatusAccepted, RequestStatusInProgress}

// service_requests — заявка клиента конкретному провайдеру.
type ServiceRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ProviderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceCategoryID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Контакты копируются из формы, а не берутся из профиля.
	CustomerName     string `gorm:"type:varchar(100);not null"`
	CustomerPhone    string `gorm:"type:varchar(20)"`
	CustomerLocation string `gorm:"type:text"`
	Description      string `gorm:"type:text"`

	Status RequestStatus `gorm:"type:varchar(20);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Provider        *ServiceProvider `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Customer        *User            `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ServiceCategory *ServiceCategory `gorm:"foreignKey:ServiceCategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (r *ServiceRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
