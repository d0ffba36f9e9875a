package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// reviews — отзыв клиента, не больше одного на бронирование.
type Review struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
