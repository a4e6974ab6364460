package models

import "time"

// Client entity (the quote's recipient)
type Client struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;index"` // FK to User
	User        User   `gorm:"foreignKey:UserID"`
	Name        string `gorm:"not null;index"` // company or personal name
	ContactName string // primary contact
	Email       string
	Phone       string
	KvK         string `gorm:"index"` // Dutch chamber of commerce number
	BTWNumber   string `gorm:"index"` // VAT identification number
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
