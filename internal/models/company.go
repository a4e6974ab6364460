package models

import "time"

// Company & related
type CompanySettings struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;index"` // FK to User
	User        User   `gorm:"foreignKey:UserID"`
	Name        string `gorm:"not null;index"` // registered name
	DisplayName string `gorm:"index"`          // shown on public pages; falls back to Name
	KvK         string `gorm:"size:8;index"`
	BTWNumber   string `gorm:"index"`
	IBAN        string
	Email       string
	LogoURL     string // URL or path of the logo shown on the signing page
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicName is what an external customer sees on the signing page.
func (c *CompanySettings) PublicName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}
