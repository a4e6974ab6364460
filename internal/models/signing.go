package models

import "time"

// Records written by the signing workflow. Both are append-only: created
// exactly once when a quote reaches a terminal signing status and never
// updated afterwards.

type SignatureRecord struct {
	ID          uint    `gorm:"primaryKey"`
	PublicID    string  `gorm:"uniqueIndex;not null"` // uuid, safe to expose in back-office exports
	QuoteID     uint    `gorm:"not null;index"`
	SignerName  string  `gorm:"not null"`
	SignerEmail string
	// The exact agreement text shown at signing time. Snapshotted, not
	// referenced: later template edits must not change what was agreed.
	AgreementText string  `gorm:"type:text;not null"`
	IPAddress     *string
	UserAgent     *string
	SignedAt      time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

type DeclineRecord struct {
	ID         uint    `gorm:"primaryKey"`
	PublicID   string  `gorm:"uniqueIndex;not null"`
	QuoteID    uint    `gorm:"not null;index"`
	Reason     string  // optional free-form comment from the customer
	IPAddress  *string
	UserAgent  *string
	DeclinedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
}

// AgreementTemplate holds a user's custom agreement text for the signing page.
// When absent, a built-in default is used.
type AgreementTemplate struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
