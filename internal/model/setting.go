package model

import "time"

// system_settings — простые ключ-значение настройки сайта.
type SystemSetting struct {
	Key         string `gorm:"column:setting_key;type:varchar(100);primaryKey"`
	Value       string `gorm:"type:text"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null"`

	UpdatedAt time.Time `gorm:"not null"`
}
