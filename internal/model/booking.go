package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// ActiveBookingStatuses учитываются в статистике кабинета провайдера.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

// bookings — старый поток бронирования услуг (до ServiceRequest).
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ServiceID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`

	BookingDate time.Time     `gorm:"not null;index"`
	Address     string        `gorm:"type:text"`
	Notes       string        `gorm:"type:text"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Service  *Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Customer *User    `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Review   *Review  `gorm:"foreignKey:BookingID"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
