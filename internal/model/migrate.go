package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ServiceCategory{},
		&ServiceProvider{},
		&Service{},
		&ServiceRequest{},
		&Booking{},
		&Review{},
		&SystemSetting{},
		&Session{},
		&Event{},
	)
}
