package models

import "time"

// User owns quotes and agreement templates. Session handling for logged-in
// users lives in the main application, not in this service.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Name      string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
