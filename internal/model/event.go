package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeRequestCreated     EventType = "request_created"
	EventTypeRequestTransition  EventType = "request_transition"
	EventTypeRequestIgnored     EventType = "request_transition_ignored"
	EventTypeProviderRegistered EventType = "provider_registered"
	EventTypeProviderApproved   EventType = "provider_approved"
	EventTypeProviderRejected   EventType = "provider_rejected"
)

// events — журнал аудита. Внешних ключей нет: события переживают удаление
// провайдера и заявок, подробности лежат в Details.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	RequestID  *uuid.UUID `gorm:"type:uuid;index"`
	ProviderID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSONMap
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
